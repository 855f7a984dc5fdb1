// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/music-tagger/internal/config"
)

var cfgFile string
var rootDir string
var databasePath string
var cachePath string
var skipOnline bool
var forceFingerprint bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "music-tagger",
	Short: "Identify and tag music files from filenames, fingerprints and online catalogs",
	Long: `Music Tagger scans a directory of music files, derives missing metadata
from filenames and directory context, looks tracks up by text search and
acoustic fingerprint, and writes the resolved tags back into the files.

Embedded tags are never changed until you commit.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.music-tagger.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "dir", "", "root directory containing music files")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "music-tagger.db", "path to the scan/commit audit database")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "music-tagger.cache", "path to the provider response cache")
	rootCmd.PersistentFlags().BoolVar(&skipOnline, "offline", false, "skip every network stage")
	rootCmd.PersistentFlags().BoolVar(&forceFingerprint, "force-fingerprint", false, "fingerprint even when text search matched")

	viper.BindPFlag("root_dir", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("cache_path", rootCmd.PersistentFlags().Lookup("cache"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(albumCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server_addr)")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")

	albumCmd.Flags().Int("apply", 0, "apply the Nth listed candidate (1-based)")
	commitCmd.Flags().String("cover", "keep", "cover action: keep, replace or remove")
	importCmd.Flags().String("library", "", "path to iTunes Music Library.xml")
	watchCmd.Flags().Duration("debounce", 5*time.Second, "settle period before a rescan")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".music-tagger")
	}

	viper.SetEnvPrefix("MUSIC_TAGGER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// The audit database and cache live wherever the flags point;
	// make sure the directories exist.
	for _, p := range []string{databasePath, cachePath} {
		if p == "" {
			continue
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				fmt.Printf("Error creating directory for %s: %v\n", p, err)
			}
		}
	}

	config.InitConfig()
	if err := config.LoadConfigFromFile(); err != nil {
		fmt.Printf("Warning: could not load saved settings: %v\n", err)
	}
}
