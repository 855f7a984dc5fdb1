// file: cmd/wire.go
// version: 1.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package cmd

import (
	"fmt"
	"log"

	"github.com/jdfalk/music-tagger/internal/album"
	"github.com/jdfalk/music-tagger/internal/config"
	"github.com/jdfalk/music-tagger/internal/covers"
	"github.com/jdfalk/music-tagger/internal/database"
	"github.com/jdfalk/music-tagger/internal/enrich"
	"github.com/jdfalk/music-tagger/internal/fingerprint"
	"github.com/jdfalk/music-tagger/internal/resolve"
	"github.com/jdfalk/music-tagger/internal/session"
)

// buildSession wires providers, caches and the audit store into a
// fresh session from the current configuration. The returned cleanup
// closes whatever was opened.
func buildSession() (*session.Session, func(), error) {
	cfg := &config.AppConfig

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("[WARN] cmd: close: %v", err)
			}
		}
	}

	var audit *database.AuditStore
	if cfg.DatabasePath != "" {
		a, err := database.OpenAudit(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit store: %w", err)
		}
		audit = a
		closers = append(closers, a.Close)
	}

	var cache fingerprint.Cache
	if cfg.CachePath != "" {
		c, err := database.OpenCache(cfg.CachePath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open response cache: %w", err)
		}
		cache = c
		closers = append(closers, c.Close)
	}

	mb := enrich.NewMusicBrainzClient(cfg.RateLimit("musicbrainz"))
	sources := []enrich.Source{mb}

	var lfm *enrich.LastFMClient
	if cfg.APIKeys.LastFM != "" {
		lfm = enrich.NewLastFMClient(cfg.APIKeys.LastFM, cfg.RateLimit("lastfm"))
		sources = append(sources, lfm)
	}

	var recognizers []fingerprint.Provider
	if cfg.APIKeys.AcoustID != "" {
		recognizers = append(recognizers, fingerprint.NewAcoustIDClient(
			cfg.APIKeys.AcoustID, cfg.RateLimit("acoustid"), cfg.FingerprintThreshold, cache))
	}
	if cfg.APIKeys.ACRCloudHost != "" && cfg.APIKeys.ACRCloudKey != "" {
		recognizers = append(recognizers, fingerprint.NewACRCloudClient(
			cfg.APIKeys.ACRCloudHost, cfg.APIKeys.ACRCloudKey,
			cfg.APIKeys.ACRCloudSecret, cfg.FingerprintThreshold))
	}

	resolver := &resolve.Resolver{
		Search: enrich.NewChain(cfg.MinConfidence, sources...),
	}
	if len(recognizers) > 0 {
		resolver.Recognizer = fingerprint.NewService(
			fingerprint.NewCalculator(cfg.FpcalcPath), recognizers...)
	}
	if lfm != nil {
		resolver.TagFetcher = lfm
	}

	var albumFallback album.Source
	if cfg.APIKeys.DiscogsToken != "" {
		albumFallback = enrich.NewDiscogsClient(cfg.APIKeys.DiscogsToken, cfg.RateLimit("discogs"))
	}
	albums := album.NewResolver(mb, albumFallback)

	sess := session.New(resolver, albums, audit)
	sess.FetchCover = covers.Download
	return sess, cleanup, nil
}
