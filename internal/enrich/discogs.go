// file: internal/enrich/discogs.go
// version: 1.1.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8a

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/music-tagger/internal/models"
)

const discogsBaseURL = "https://api.discogs.com"

// DiscogsClient searches the Discogs database. It serves as the album
// candidate fallback when MusicBrainz comes up short.
type DiscogsClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewDiscogsClient builds a client authenticated with a personal
// access token.
func NewDiscogsClient(token string, interval time.Duration) *DiscogsClient {
	if interval <= 0 {
		interval = time.Second
	}
	return &DiscogsClient{
		token:      token,
		baseURL:    discogsBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Name identifies the provider in logs and provenance.
func (c *DiscogsClient) Name() string { return "discogs" }

type discogsSearchResponse struct {
	Results []struct {
		ID      int    `json:"id"`
		Title   string `json:"title"` // "Artist - Album"
		Year    string `json:"year"`
		Country string `json:"country"`
	} `json:"results"`
}

// SearchReleases searches Discogs for releases matching artist and
// album text. Discogs has no match scoring, so results carry a flat
// below-threshold score and rely on track-listing verification later.
func (c *DiscogsClient) SearchReleases(ctx context.Context, artist, album string) ([]models.AlbumCandidate, error) {
	if c.token == "" {
		return nil, fmt.Errorf("discogs token not configured: %w", models.ErrProviderUnavailable)
	}
	if artist == "" && album == "" {
		return nil, models.ErrNoMatch
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("type", "release")
	params.Set("per_page", "25")
	if artist != "" {
		params.Set("artist", artist)
	}
	if album != "" {
		params.Set("release_title", album)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/database/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", musicbrainzUA)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discogs: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("discogs: HTTP %d: %w", resp.StatusCode, models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("discogs: read response: %w", models.ErrProviderUnavailable)
	}

	var result discogsSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("discogs: decode response: %w", models.ErrProviderUnavailable)
	}

	candidates := make([]models.AlbumCandidate, 0, len(result.Results))
	for _, r := range result.Results {
		// Discogs returns a combined "Artist - Album" title and no
		// track count from search; the count stays zero until the
		// track listing is fetched.
		candArtist, candAlbum, found := strings.Cut(r.Title, " - ")
		if !found {
			candArtist, candAlbum = "", r.Title
		}
		candidates = append(candidates, models.AlbumCandidate{
			Album:          candAlbum,
			Artist:         candArtist,
			ReleaseDate:    r.Year,
			Country:        r.Country,
			SourceProvider: c.Name(),
			MatchScore:     0.5,
			ExternalID:     strconv.Itoa(r.ID),
		})
	}
	if len(candidates) == 0 {
		return nil, models.ErrNoMatch
	}
	return candidates, nil
}

type discogsReleaseResponse struct {
	Tracklist []struct {
		Position string `json:"position"`
		Title    string `json:"title"`
	} `json:"tracklist"`
}

// ReleaseTracks fetches the track listing for a Discogs release.
func (c *DiscogsClient) ReleaseTracks(ctx context.Context, releaseID string) ([]models.AlbumTrack, error) {
	if c.token == "" {
		return nil, fmt.Errorf("discogs token not configured: %w", models.ErrProviderUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/releases/"+releaseID, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", musicbrainzUA)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discogs: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discogs: HTTP %d: %w", resp.StatusCode, models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("discogs: read response: %w", models.ErrProviderUnavailable)
	}

	var release discogsReleaseResponse
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("discogs: decode response: %w", models.ErrProviderUnavailable)
	}

	tracks := make([]models.AlbumTrack, 0, len(release.Tracklist))
	for i, t := range release.Tracklist {
		pos := i + 1
		if n, convErr := strconv.Atoi(t.Position); convErr == nil {
			pos = n
		}
		tracks = append(tracks, models.AlbumTrack{Position: pos, Title: t.Title})
	}
	return tracks, nil
}
