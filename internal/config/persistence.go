// file: internal/config/persistence.go
// version: 2.1.0
// guid: 6b7c8d9e-0f1a-2b3c-4d5e-6f7a8b9c0d1e

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the path to the YAML config file next to the
// audit database, or inside the root dir when no database is configured.
func ConfigFilePath() string {
	if AppConfig.DatabasePath != "" {
		return filepath.Join(filepath.Dir(AppConfig.DatabasePath), "config.yaml")
	}
	if AppConfig.RootDir != "" {
		return filepath.Join(AppConfig.RootDir, "config.yaml")
	}
	return ""
}

// LoadConfigFromFile loads settings from the YAML config file as a
// fallback. File values only fill in gaps left by flags and env.
func LoadConfigFromFile() error {
	path := ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig map[string]any
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		log.Printf("[WARN] Failed to parse config file %s: %v", path, err)
		return nil
	}

	applied := 0

	stringFallbacks := map[string]*string{
		"root_dir":        &AppConfig.RootDir,
		"server_addr":     &AppConfig.ServerAddr,
		"itunes_library":  &AppConfig.ITunesLibrary,
		"acoustid_key":    &AppConfig.APIKeys.AcoustID,
		"lastfm_key":      &AppConfig.APIKeys.LastFM,
		"discogs_token":   &AppConfig.APIKeys.DiscogsToken,
		"acrcloud_key":    &AppConfig.APIKeys.ACRCloudKey,
		"acrcloud_secret": &AppConfig.APIKeys.ACRCloudSecret,
		"acrcloud_host":   &AppConfig.APIKeys.ACRCloudHost,
	}
	for key, ptr := range stringFallbacks {
		if *ptr == "" {
			if val, ok := fileConfig[key].(string); ok && val != "" {
				*ptr = val
				applied++
				log.Printf("[INFO] Loaded %s from config file", key)
			}
		}
	}

	if val, ok := fileConfig["track_number_width"].(int); ok && val >= 1 && val <= 3 {
		AppConfig.TrackNumberWidth = val
		applied++
	}

	if applied > 0 {
		log.Printf("[INFO] Applied %d settings from config file %s", applied, path)
	}
	return nil
}

// SaveConfigToFile writes key settings to a YAML config file.
// Secrets are stored in plaintext here; file permissions restrict access.
func SaveConfigToFile() error {
	path := ConfigFilePath()
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	fileConfig := map[string]any{
		"root_dir":           AppConfig.RootDir,
		"server_addr":        AppConfig.ServerAddr,
		"track_number_width": AppConfig.TrackNumberWidth,
		"min_confidence":     AppConfig.MinConfidence,
	}

	if AppConfig.APIKeys.AcoustID != "" {
		fileConfig["acoustid_key"] = AppConfig.APIKeys.AcoustID
	}
	if AppConfig.APIKeys.LastFM != "" {
		fileConfig["lastfm_key"] = AppConfig.APIKeys.LastFM
	}
	if AppConfig.APIKeys.DiscogsToken != "" {
		fileConfig["discogs_token"] = AppConfig.APIKeys.DiscogsToken
	}
	if AppConfig.ITunesLibrary != "" {
		fileConfig["itunes_library"] = AppConfig.ITunesLibrary
	}

	data, err := yaml.Marshal(fileConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	log.Printf("[INFO] Saved configuration to %s", path)
	return nil
}
