// file: internal/enrich/musicbrainz.go
// version: 1.4.0
// guid: 1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6e

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/music-tagger/internal/models"
)

const (
	musicbrainzBaseURL = "https://musicbrainz.org/ws/2"
	coverArtBaseURL    = "https://coverartarchive.org"
	musicbrainzUA      = "music-tagger/1.0 (https://github.com/jdfalk/music-tagger)"
)

// MusicBrainzClient queries the MusicBrainz web service. MusicBrainz
// requires one request per second per client, enforced here with a
// shared limiter across all calls.
type MusicBrainzClient struct {
	baseURL     string
	coverArtURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewMusicBrainzClient builds a client with the given minimum
// inter-request delay.
func NewMusicBrainzClient(interval time.Duration) *MusicBrainzClient {
	if interval <= 0 {
		interval = time.Second
	}
	return &MusicBrainzClient{
		baseURL:     musicbrainzBaseURL,
		coverArtURL: coverArtBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Name implements Source.
func (c *MusicBrainzClient) Name() string { return "musicbrainz" }

type mbRecordingSearchResponse struct {
	Recordings []struct {
		ID           string `json:"id"`
		Score        int    `json:"score"`
		Title        string `json:"title"`
		ArtistCredit []struct {
			Name       string `json:"name"`
			JoinPhrase string `json:"joinphrase"`
		} `json:"artist-credit"`
		Releases []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Date    string `json:"date"`
			Country string `json:"country"`
		} `json:"releases"`
	} `json:"recordings"`
}

// SearchTrack implements Source using the recording search endpoint.
func (c *MusicBrainzClient) SearchTrack(ctx context.Context, artist, title string) (*models.RecognitionResult, error) {
	query := fmt.Sprintf("recording:%q", title)
	if artist != "" {
		query += fmt.Sprintf(" AND artist:%q", artist)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", "10")

	body, err := c.get(ctx, c.baseURL+"/recording?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp mbRecordingSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode response: %w", models.ErrProviderUnavailable)
	}
	if len(resp.Recordings) == 0 {
		return nil, models.ErrNoMatch
	}

	rec := resp.Recordings[0]
	result := &models.RecognitionResult{
		Title:          rec.Title,
		Confidence:     float64(rec.Score) / 100,
		SourceProvider: c.Name(),
		ExternalIDs:    map[string]string{"musicbrainz_recording": rec.ID},
	}
	result.Artist = joinArtistCredit(rec.ArtistCredit)
	if len(rec.Releases) > 0 {
		rel := rec.Releases[0]
		result.Album = rel.Title
		result.ExternalIDs["musicbrainz_release"] = rel.ID
		result.CoverURL = c.frontCoverURL(rel.ID)
	}
	return result, nil
}

type mbReleaseSearchResponse struct {
	Releases []struct {
		ID           string `json:"id"`
		Score        int    `json:"score"`
		Title        string `json:"title"`
		Date         string `json:"date"`
		Country      string `json:"country"`
		ArtistCredit []struct {
			Name       string `json:"name"`
			JoinPhrase string `json:"joinphrase"`
		} `json:"artist-credit"`
		Media []struct {
			TrackCount int `json:"track-count"`
		} `json:"media"`
	} `json:"releases"`
}

// SearchReleases searches for releases matching artist and album text.
// Either argument may be empty.
func (c *MusicBrainzClient) SearchReleases(ctx context.Context, artist, album string) ([]models.AlbumCandidate, error) {
	var query string
	switch {
	case artist != "" && album != "":
		query = fmt.Sprintf("release:%q AND artist:%q", album, artist)
	case album != "":
		query = fmt.Sprintf("release:%q", album)
	case artist != "":
		query = fmt.Sprintf("artist:%q", artist)
	default:
		return nil, models.ErrNoMatch
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", "25")

	body, err := c.get(ctx, c.baseURL+"/release?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp mbReleaseSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode response: %w", models.ErrProviderUnavailable)
	}

	candidates := make([]models.AlbumCandidate, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		cand := models.AlbumCandidate{
			Album:          r.Title,
			Artist:         joinArtistCredit(r.ArtistCredit),
			ReleaseDate:    r.Date,
			Country:        r.Country,
			SourceProvider: c.Name(),
			MatchScore:     float64(r.Score) / 100,
			ExternalID:     r.ID,
		}
		for _, m := range r.Media {
			cand.TrackCount += m.TrackCount
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return nil, models.ErrNoMatch
	}
	return candidates, nil
}

type mbReleaseDetailsResponse struct {
	Media []struct {
		Tracks []struct {
			Position int    `json:"position"`
			Title    string `json:"title"`
		} `json:"tracks"`
	} `json:"media"`
}

// ReleaseTracks fetches the track listing for a release.
func (c *MusicBrainzClient) ReleaseTracks(ctx context.Context, releaseID string) ([]models.AlbumTrack, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "recordings")

	body, err := c.get(ctx, c.baseURL+"/release/"+releaseID+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp mbReleaseDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode response: %w", models.ErrProviderUnavailable)
	}

	var tracks []models.AlbumTrack
	offset := 0
	for _, m := range resp.Media {
		for _, t := range m.Tracks {
			tracks = append(tracks, models.AlbumTrack{Position: offset + t.Position, Title: t.Title})
		}
		offset = len(tracks)
	}
	return tracks, nil
}

// FetchCoverArt downloads the front cover for a release from the
// Cover Art Archive. A missing cover is (nil, nil), not an error.
func (c *MusicBrainzClient) FetchCoverArt(ctx context.Context, releaseID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.frontCoverURL(releaseID), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", musicbrainzUA)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coverartarchive: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coverartarchive: HTTP %d: %w", resp.StatusCode, models.ErrProviderUnavailable)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

func (c *MusicBrainzClient) frontCoverURL(releaseID string) string {
	return c.coverArtURL + "/release/" + releaseID + "/front-500"
}

func (c *MusicBrainzClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: create request: %w", err)
	}
	req.Header.Set("User-Agent", musicbrainzUA)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		// MusicBrainz answers 503 when the per-client rate is exceeded.
		retry := resp.Header.Get("Retry-After")
		if secs, convErr := strconv.Atoi(retry); convErr == nil && secs > 0 {
			return nil, fmt.Errorf("musicbrainz: retry after %ds: %w", secs, models.ErrRateLimited)
		}
		return nil, models.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("musicbrainz: HTTP %d: %w", resp.StatusCode, models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: read response: %w", models.ErrProviderUnavailable)
	}
	return body, nil
}

func joinArtistCredit(credits []struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
}) string {
	out := ""
	for _, cr := range credits {
		out += cr.Name + cr.JoinPhrase
	}
	return out
}
