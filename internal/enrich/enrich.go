// file: internal/enrich/enrich.go
// version: 1.2.0
// guid: 0f1a2b3c-4d5e-6f7a-8b9c-0d1e2f3a4b5d

// Package enrich looks up track metadata by text search against online
// providers. Results land in the suggestion slot; embedded tags are
// never touched here.
package enrich

import (
	"context"
	"errors"
	"log"

	"github.com/jdfalk/music-tagger/internal/metrics"
	"github.com/jdfalk/music-tagger/internal/models"
)

// Source answers a text search for a single track. Implementations
// return models.ErrNoMatch when the catalog has nothing plausible and
// models.ErrAmbiguousCandidate when the best hit is below their own
// scoring floor.
type Source interface {
	Name() string
	SearchTrack(ctx context.Context, artist, title string) (*models.RecognitionResult, error)
}

// Chain queries sources in a fixed order and gates results on a
// confidence threshold. The first result at or above the threshold
// wins; everything below is treated as no match.
type Chain struct {
	sources   []Source
	threshold float64
}

// NewChain builds a Chain over the given sources, tried in order.
func NewChain(threshold float64, sources ...Source) *Chain {
	return &Chain{sources: sources, threshold: threshold}
}

// SearchTrack implements Source over the whole chain.
func (c *Chain) SearchTrack(ctx context.Context, artist, title string) (*models.RecognitionResult, error) {
	if title == "" {
		return nil, models.ErrNoMatch
	}
	for _, s := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.SearchTrack(ctx, artist, title)
		if err == nil {
			if res.Confidence < c.threshold {
				metrics.IncProviderLookup(s.Name(), "miss")
				log.Printf("[DEBUG] enrich: %s best %.2f below threshold %.2f for %q", s.Name(), res.Confidence, c.threshold, title)
				continue
			}
			metrics.IncProviderLookup(s.Name(), "hit")
			log.Printf("[INFO] enrich: %s matched %q / %q (%.2f)", s.Name(), res.Artist, res.Title, res.Confidence)
			return res, nil
		}
		switch {
		case errors.Is(err, models.ErrNoMatch), errors.Is(err, models.ErrAmbiguousCandidate):
			metrics.IncProviderLookup(s.Name(), "miss")
			log.Printf("[DEBUG] enrich: %s no match for %q", s.Name(), title)
		case models.IsRetryable(err):
			metrics.IncProviderLookup(s.Name(), "error")
			log.Printf("[WARN] enrich: %s unavailable: %v", s.Name(), err)
		default:
			return nil, err
		}
	}
	return nil, models.ErrNoMatch
}

// Name implements Source.
func (c *Chain) Name() string { return "chain" }
