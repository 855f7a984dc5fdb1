// file: internal/fingerprint/acoustid.go
// version: 1.3.0
// guid: 7c8d9e0f-1a2b-3c4d-5e6f-7a8b9c0d1e2a

package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"github.com/jdfalk/music-tagger/internal/models"
)

const acoustidBaseURL = "https://api.acoustid.org/v2"

// AcoustIDClient queries the AcoustID web service. Requests are rate
// limited to the service's free-tier allowance (3/sec) and responses
// are cached by fingerprint hash when a cache is provided.
type AcoustIDClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	threshold  float64
}

// NewAcoustIDClient builds a client. threshold is the minimum match
// score accepted; weaker hits are reported as ambiguous.
func NewAcoustIDClient(apiKey string, interval time.Duration, threshold float64, cache Cache) *AcoustIDClient {
	if interval <= 0 {
		interval = 334 * time.Millisecond
	}
	return &AcoustIDClient{
		apiKey:     apiKey,
		baseURL:    acoustidBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		cache:      cache,
		threshold:  threshold,
	}
}

// Name implements Provider.
func (c *AcoustIDClient) Name() string { return "acoustid" }

type acoustidResponse struct {
	Status  string `json:"status"`
	Results []struct {
		ID         string  `json:"id"`
		Score      float64 `json:"score"`
		Recordings []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			ReleaseGroups []struct {
				Title string `json:"title"`
			} `json:"releasegroups"`
		} `json:"recordings"`
	} `json:"results"`
}

// Lookup implements Provider.
func (c *AcoustIDClient) Lookup(ctx context.Context, fp *Fingerprint) (*models.RecognitionResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("acoustid api key not configured: %w", models.ErrProviderUnavailable)
	}

	body, err := c.fetch(ctx, fp)
	if err != nil {
		return nil, err
	}

	var resp acoustidResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("acoustid: decode response: %w", models.ErrProviderUnavailable)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("acoustid: status %q: %w", resp.Status, models.ErrProviderUnavailable)
	}
	return c.pick(&resp)
}

func (c *AcoustIDClient) fetch(ctx context.Context, fp *Fingerprint) ([]byte, error) {
	key := cacheKey("acoustid", fp)
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			log.Printf("[DEBUG] acoustid: cache hit for fingerprint")
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("format", "json")
	form.Set("duration", strconv.Itoa(fp.Duration))
	form.Set("fingerprint", fp.Fingerprint)
	form.Set("meta", "recordings releasegroups")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup", nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = form.Encode()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, models.ErrRateLimited
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("acoustid: HTTP %d: %w", res.StatusCode, models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("acoustid: read response: %w", models.ErrProviderUnavailable)
	}
	if c.cache != nil {
		if err := c.cache.Put(key, body); err != nil {
			log.Printf("[WARN] acoustid: cache write failed: %v", err)
		}
	}
	return body, nil
}

func (c *AcoustIDClient) pick(resp *acoustidResponse) (*models.RecognitionResult, error) {
	var best *models.RecognitionResult
	for _, r := range resp.Results {
		if len(r.Recordings) == 0 {
			continue
		}
		if best != nil && r.Score <= best.Confidence {
			continue
		}
		rec := r.Recordings[0]
		result := &models.RecognitionResult{
			Title:          rec.Title,
			Confidence:     r.Score,
			SourceProvider: c.Name(),
			ExternalIDs:    map[string]string{"acoustid": r.ID},
		}
		if rec.ID != "" {
			result.ExternalIDs["musicbrainz_recording"] = rec.ID
		}
		if len(rec.Artists) > 0 {
			result.Artist = rec.Artists[0].Name
		}
		if len(rec.ReleaseGroups) > 0 {
			result.Album = rec.ReleaseGroups[0].Title
		}
		best = result
	}
	if best == nil {
		return nil, models.ErrNoMatch
	}
	if best.Confidence < c.threshold {
		return nil, fmt.Errorf("acoustid: best score %.2f below threshold %.2f: %w", best.Confidence, c.threshold, models.ErrAmbiguousCandidate)
	}
	return best, nil
}

// cacheKey derives a stable short key for a fingerprint lookup.
func cacheKey(provider string, fp *Fingerprint) string {
	sum := blake2b.Sum256([]byte(fp.Fingerprint))
	return fmt.Sprintf("%s:%d:%x", provider, fp.Duration, sum[:16])
}
