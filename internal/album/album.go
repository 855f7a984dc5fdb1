// file: internal/album/album.go
// version: 1.3.0
// guid: 6f7a8b9c-0d1e-2f3a-4b5c-6d7e8f9a0b1d

// Package album resolves metadata for a whole directory at once:
// ranked release candidates from online catalogs, verified against
// the directory's actual track titles.
package album

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/jdfalk/music-tagger/internal/matcher"
	"github.com/jdfalk/music-tagger/internal/models"
)

const (
	maxCandidates   = 5
	fallbackCutoff  = 0.6
	minPrimaryHits  = 2
	trackCountSlack = 2
	trackCountBonus = 0.1
)

// Source provides release search and track listings for one catalog.
type Source interface {
	Name() string
	SearchReleases(ctx context.Context, artist, album string) ([]models.AlbumCandidate, error)
	ReleaseTracks(ctx context.Context, releaseID string) ([]models.AlbumTrack, error)
}

// TrackSummary is the per-file input to resolution: the best title
// and artist known so far, from any slot.
type TrackSummary struct {
	Filename string
	Artist   string
	Title    string
}

// Resolver ranks album candidates. The primary source is consulted
// first; the fallback only when the primary yields too few or too
// weak candidates.
type Resolver struct {
	primary  Source
	fallback Source
}

// NewResolver builds a Resolver. fallback may be nil.
func NewResolver(primary, fallback Source) *Resolver {
	return &Resolver{primary: primary, fallback: fallback}
}

// Resolve returns up to five candidates ranked by match score
// descending. It is read-only: callers decide whether and when to
// apply a candidate. No candidates is ErrNoMatch.
func (r *Resolver) Resolve(ctx context.Context, artist, album string, tracks []TrackSummary) ([]models.AlbumCandidate, error) {
	candidates, err := r.search(ctx, r.primary, artist, album, tracks)
	if err != nil && !models.IsNoResult(err) && !models.IsRetryable(err) {
		return nil, err
	}

	if r.fallback != nil && needsFallback(candidates) {
		log.Printf("[DEBUG] album: %s returned %d candidates, trying %s", r.primary.Name(), len(candidates), r.fallback.Name())
		more, fbErr := r.search(ctx, r.fallback, artist, album, tracks)
		if fbErr != nil && !models.IsNoResult(fbErr) && !models.IsRetryable(fbErr) {
			return nil, fbErr
		}
		candidates = append(candidates, more...)
	}

	if len(candidates) == 0 {
		return nil, models.ErrNoMatch
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

func needsFallback(candidates []models.AlbumCandidate) bool {
	if len(candidates) < minPrimaryHits {
		return true
	}
	best := 0.0
	for _, c := range candidates {
		if c.MatchScore > best {
			best = c.MatchScore
		}
	}
	return best < fallbackCutoff
}

func (r *Resolver) search(ctx context.Context, src Source, artist, album string, tracks []TrackSummary) ([]models.AlbumCandidate, error) {
	candidates, err := src.SearchReleases(ctx, artist, album)
	if err != nil {
		if errors.Is(err, models.ErrNoMatch) {
			return nil, nil
		}
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		listing, listErr := src.ReleaseTracks(ctx, c.ExternalID)
		if listErr != nil {
			log.Printf("[WARN] album: %s track listing for %s failed: %v", src.Name(), c.ExternalID, listErr)
			continue
		}
		c.Tracks = listing
		if c.TrackCount == 0 {
			c.TrackCount = len(listing)
		}
		c.MatchScore = scoreCandidate(c, tracks)
	}
	return candidates, nil
}

// scoreCandidate measures how well a catalog release matches the
// files on disk: the mean per-file title similarity, plus a small
// bonus when the release track count is close to the file count.
func scoreCandidate(c *models.AlbumCandidate, tracks []TrackSummary) float64 {
	if len(tracks) == 0 || len(c.Tracks) == 0 {
		return c.MatchScore
	}

	titles := make([]string, len(c.Tracks))
	for i, t := range c.Tracks {
		titles[i] = t.Title
	}

	sum := 0.0
	for _, t := range tracks {
		_, best := matcher.BestTitle(t.Title, titles)
		sum += best
	}
	score := sum / float64(len(tracks))

	diff := c.TrackCount - len(tracks)
	if diff < 0 {
		diff = -diff
	}
	if diff <= trackCountSlack {
		score += trackCountBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}
