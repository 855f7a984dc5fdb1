// file: internal/enrich/lastfm.go
// version: 1.2.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7f

package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
	"golang.org/x/time/rate"

	"github.com/jdfalk/music-tagger/internal/matcher"
	"github.com/jdfalk/music-tagger/internal/models"
)

// LastFMClient looks up tracks on Last.fm. It is the secondary text
// source: Last.fm has no match scoring, so confidence is derived from
// title similarity against the query.
type LastFMClient struct {
	api     *lastfm.Api
	limiter *rate.Limiter
}

// NewLastFMClient builds a client. Last.fm auth is key-only for read
// endpoints; no secret is needed.
func NewLastFMClient(apiKey string, interval time.Duration) *LastFMClient {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	var api *lastfm.Api
	if apiKey != "" {
		api = lastfm.New(apiKey, "")
	}
	return &LastFMClient{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Name implements Source.
func (c *LastFMClient) Name() string { return "lastfm" }

// SearchTrack implements Source via track.getInfo.
func (c *LastFMClient) SearchTrack(ctx context.Context, artist, title string) (*models.RecognitionResult, error) {
	if c.api == nil {
		return nil, fmt.Errorf("lastfm api key not configured: %w", models.ErrProviderUnavailable)
	}
	if artist == "" {
		// track.getInfo requires an artist; without one Last.fm
		// cannot disambiguate at all.
		return nil, models.ErrNoMatch
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	info, err := c.api.Track.GetInfo(lastfm.P{"artist": artist, "track": title, "autocorrect": "1"})
	if err != nil {
		var lfmErr *lastfm.LastfmError
		if errors.As(err, &lfmErr) && lfmErr.Code == 6 {
			// 6 = track not found
			return nil, models.ErrNoMatch
		}
		return nil, fmt.Errorf("lastfm: %v: %w", err, models.ErrProviderUnavailable)
	}
	if info.Name == "" {
		return nil, models.ErrNoMatch
	}

	result := &models.RecognitionResult{
		Title:          info.Name,
		Artist:         info.Artist.Name,
		Album:          info.Album.Title,
		Confidence:     matcher.TitleSimilarity(title, info.Name),
		SourceProvider: c.Name(),
		ExternalIDs:    map[string]string{},
	}
	if info.Mbid != "" {
		result.ExternalIDs["musicbrainz_recording"] = info.Mbid
	}
	// Last.fm lists images smallest first; prefer extralarge.
	for _, img := range info.Album.Images {
		if img.Url == "" {
			continue
		}
		result.CoverURL = img.Url
		if img.Size == "extralarge" {
			break
		}
	}
	return result, nil
}

// TopTags fetches a track's community tags, used by the genre and
// mood classifiers.
func (c *LastFMClient) TopTags(ctx context.Context, artist, title string) ([]string, error) {
	if c.api == nil {
		return nil, fmt.Errorf("lastfm api key not configured: %w", models.ErrProviderUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tags, err := c.api.Track.GetTopTags(lastfm.P{"artist": artist, "track": title, "autocorrect": "1"})
	if err != nil {
		return nil, fmt.Errorf("lastfm: %v: %w", err, models.ErrProviderUnavailable)
	}

	out := make([]string, 0, len(tags.Tags))
	for _, t := range tags.Tags {
		name := strings.TrimSpace(t.Name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
