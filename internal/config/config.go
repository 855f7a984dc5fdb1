// file: internal/config/config.go
// version: 2.0.0
// guid: 3f4a5b6c-7d8e-9f0a-1b2c-3d4e5f6a7b8c

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	RootDir      string
	DatabasePath string // sqlite audit store (scan/commit log)
	CachePath    string // pebble provider-response cache
	ServerAddr   string

	// Provider credentials
	APIKeys struct {
		AcoustID       string
		LastFM         string
		DiscogsToken   string
		ACRCloudKey    string
		ACRCloudSecret string
		ACRCloudHost   string
	}

	// Acceptance thresholds. MinConfidence gates online text-search
	// candidates and the album fallback cutoff; FingerprintThreshold
	// gates fingerprint matches.
	MinConfidence        float64
	FingerprintThreshold float64

	// Minimum inter-request delay per provider.
	RateLimits map[string]time.Duration

	TrackNumberWidth int // zero-pad width, 1..3
	ConcurrentReads  int // workers for local stages (tag read, heuristics)
	ITunesLibrary    string
	FpcalcPath       string
	FfprobePath      string

	SupportedExtensions []string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("min_confidence", 0.6)
	viper.SetDefault("fingerprint_threshold", 0.8)
	viper.SetDefault("track_number_width", 2)
	viper.SetDefault("concurrent_reads", 4)
	viper.SetDefault("server_addr", ":8138")
	viper.SetDefault("fpcalc_path", "fpcalc")
	viper.SetDefault("ffprobe_path", "ffprobe")
	viper.SetDefault("rate_limits.musicbrainz", "1s")
	viper.SetDefault("rate_limits.lastfm", "200ms")
	viper.SetDefault("rate_limits.discogs", "1s")
	viper.SetDefault("rate_limits.acoustid", "334ms")

	AppConfig = Config{
		RootDir:              viper.GetString("root_dir"),
		DatabasePath:         viper.GetString("database_path"),
		CachePath:            viper.GetString("cache_path"),
		ServerAddr:           viper.GetString("server_addr"),
		MinConfidence:        viper.GetFloat64("min_confidence"),
		FingerprintThreshold: viper.GetFloat64("fingerprint_threshold"),
		TrackNumberWidth:     viper.GetInt("track_number_width"),
		ConcurrentReads:      viper.GetInt("concurrent_reads"),
		ITunesLibrary:        viper.GetString("itunes_library"),
		FpcalcPath:           viper.GetString("fpcalc_path"),
		FfprobePath:          viper.GetString("ffprobe_path"),
		SupportedExtensions: []string{
			".mp3", ".flac", ".m4a", ".m4b", ".aac", ".ogg", ".opus", ".wma", ".wav",
		},
	}

	// API Keys
	AppConfig.APIKeys.AcoustID = viper.GetString("api_keys.acoustid")
	AppConfig.APIKeys.LastFM = viper.GetString("api_keys.lastfm")
	AppConfig.APIKeys.DiscogsToken = viper.GetString("api_keys.discogs_token")
	AppConfig.APIKeys.ACRCloudKey = viper.GetString("api_keys.acrcloud_key")
	AppConfig.APIKeys.ACRCloudSecret = viper.GetString("api_keys.acrcloud_secret")
	AppConfig.APIKeys.ACRCloudHost = viper.GetString("api_keys.acrcloud_host")

	AppConfig.RateLimits = map[string]time.Duration{
		"musicbrainz": viper.GetDuration("rate_limits.musicbrainz"),
		"lastfm":      viper.GetDuration("rate_limits.lastfm"),
		"discogs":     viper.GetDuration("rate_limits.discogs"),
		"acoustid":    viper.GetDuration("rate_limits.acoustid"),
	}

	normalize(&AppConfig)
}

// RateLimit returns the configured inter-request delay for provider,
// falling back to one second for providers without an explicit limit.
func (c *Config) RateLimit(provider string) time.Duration {
	if d, ok := c.RateLimits[provider]; ok && d > 0 {
		return d
	}
	return time.Second
}

func normalize(c *Config) {
	if c.TrackNumberWidth < 1 || c.TrackNumberWidth > 3 {
		c.TrackNumberWidth = 2
	}
	if c.ConcurrentReads < 1 {
		c.ConcurrentReads = 1
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		c.MinConfidence = 0.6
	}
	if c.FingerprintThreshold <= 0 || c.FingerprintThreshold > 1 {
		c.FingerprintThreshold = 0.8
	}
}
