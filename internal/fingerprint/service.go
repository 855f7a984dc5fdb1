// file: internal/fingerprint/service.go
// version: 1.1.0
// guid: 6b7c8d9e-0f1a-2b3c-4d5e-6f7a8b9c0d1f

package fingerprint

import (
	"context"
	"errors"
	"log"

	"github.com/jdfalk/music-tagger/internal/metrics"
	"github.com/jdfalk/music-tagger/internal/models"
)

// Provider resolves a fingerprint to track metadata. Implementations
// must return models.ErrNoMatch when the catalog has no entry and
// models.ErrAmbiguousCandidate when the best hit falls below their
// confidence threshold.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, fp *Fingerprint) (*models.RecognitionResult, error)
}

// Cache stores raw provider responses keyed by fingerprint. It is
// optional; a nil cache disables caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Service runs the fingerprint recognition stage: generate a
// chromaprint signature, then walk the provider chain in order.
type Service struct {
	calc      *Calculator
	providers []Provider
}

// NewService builds a Service with the providers tried in the order
// given. The order is fixed; ties between providers never arise
// because the first acceptable result wins.
func NewService(calc *Calculator, providers ...Provider) *Service {
	return &Service{calc: calc, providers: providers}
}

// Enabled reports whether recognition can run at all.
func (s *Service) Enabled() bool {
	return s.calc != nil && s.calc.Available() && len(s.providers) > 0
}

// Identify fingerprints the file and asks each provider in turn.
// Transient provider failures (unavailable, rate limited) and misses
// fall through to the next provider; the final miss is ErrNoMatch.
func (s *Service) Identify(ctx context.Context, filePath string) (*models.RecognitionResult, error) {
	fp, err := s.calc.Generate(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, fp)
}

func (s *Service) lookup(ctx context.Context, fp *Fingerprint) (*models.RecognitionResult, error) {
	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.Lookup(ctx, fp)
		if err == nil {
			metrics.IncProviderLookup(p.Name(), "hit")
			log.Printf("[INFO] fingerprint: %s matched %q / %q (%.2f)", p.Name(), res.Artist, res.Title, res.Confidence)
			return res, nil
		}
		switch {
		case errors.Is(err, models.ErrNoMatch), errors.Is(err, models.ErrAmbiguousCandidate):
			metrics.IncProviderLookup(p.Name(), "miss")
			log.Printf("[DEBUG] fingerprint: %s no match", p.Name())
		case models.IsRetryable(err):
			metrics.IncProviderLookup(p.Name(), "error")
			log.Printf("[WARN] fingerprint: %s unavailable: %v", p.Name(), err)
		default:
			return nil, err
		}
	}
	return nil, models.ErrNoMatch
}
