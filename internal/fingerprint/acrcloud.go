// file: internal/fingerprint/acrcloud.go
// version: 1.1.0
// guid: 8d9e0f1a-2b3c-4d5e-6f7a-8b9c0d1e2f3b

package fingerprint

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/jdfalk/music-tagger/internal/models"
)

// ACRCloudClient is the fallback recognition provider. It signs each
// request with HMAC-SHA1 per the ACRCloud identify protocol.
type ACRCloudClient struct {
	host       string
	accessKey  string
	secret     string
	httpClient *http.Client
	threshold  float64
	now        func() time.Time
}

// NewACRCloudClient builds a client for the given regional host
// (for example "identify-eu-west-1.acrcloud.com").
func NewACRCloudClient(host, accessKey, secret string, threshold float64) *ACRCloudClient {
	return &ACRCloudClient{
		host:       host,
		accessKey:  accessKey,
		secret:     secret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		threshold:  threshold,
		now:        time.Now,
	}
}

// Name implements Provider.
func (c *ACRCloudClient) Name() string { return "acrcloud" }

type acrcloudResponse struct {
	Status struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Metadata struct {
		Music []struct {
			Title   string `json:"title"`
			Score   int    `json:"score"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			ExternalIDs struct {
				ISRC string `json:"isrc"`
			} `json:"external_ids"`
		} `json:"music"`
	} `json:"metadata"`
}

// ACRCloud status codes that mean "nothing found" rather than failure.
const acrcloudNoResultCode = 1001

// Lookup implements Provider.
func (c *ACRCloudClient) Lookup(ctx context.Context, fp *Fingerprint) (*models.RecognitionResult, error) {
	if c.host == "" || c.accessKey == "" || c.secret == "" {
		return nil, fmt.Errorf("acrcloud credentials not configured: %w", models.ErrProviderUnavailable)
	}

	body, contentType, err := c.buildRequest(fp)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+c.host+"/v1/identify", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acrcloud: %v: %w", err, models.ErrProviderUnavailable)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, models.ErrRateLimited
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("acrcloud: HTTP %d: %w", res.StatusCode, models.ErrProviderUnavailable)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("acrcloud: read response: %w", models.ErrProviderUnavailable)
	}

	var resp acrcloudResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("acrcloud: decode response: %w", models.ErrProviderUnavailable)
	}
	if resp.Status.Code == acrcloudNoResultCode {
		return nil, models.ErrNoMatch
	}
	if resp.Status.Code != 0 {
		return nil, fmt.Errorf("acrcloud: status %d %s: %w", resp.Status.Code, resp.Status.Msg, models.ErrProviderUnavailable)
	}
	if len(resp.Metadata.Music) == 0 {
		return nil, models.ErrNoMatch
	}

	m := resp.Metadata.Music[0]
	confidence := float64(m.Score) / 100
	if confidence < c.threshold {
		return nil, fmt.Errorf("acrcloud: best score %.2f below threshold %.2f: %w", confidence, c.threshold, models.ErrAmbiguousCandidate)
	}

	result := &models.RecognitionResult{
		Title:          m.Title,
		Album:          m.Album.Name,
		Confidence:     confidence,
		SourceProvider: c.Name(),
		ExternalIDs:    map[string]string{},
	}
	if len(m.Artists) > 0 {
		result.Artist = m.Artists[0].Name
	}
	if m.ExternalIDs.ISRC != "" {
		result.ExternalIDs["isrc"] = m.ExternalIDs.ISRC
	}
	return result, nil
}

func (c *ACRCloudClient) buildRequest(fp *Fingerprint) (io.Reader, string, error) {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signing := "POST\n/v1/identify\n" + c.accessKey + "\nfingerprint\n1\n" + timestamp
	mac := hmac.New(sha1.New, []byte(c.secret))
	mac.Write([]byte(signing))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	sample := []byte(fp.Fingerprint)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"access_key":        c.accessKey,
		"data_type":         "fingerprint",
		"signature_version": "1",
		"signature":         signature,
		"timestamp":         timestamp,
		"sample_bytes":      strconv.Itoa(len(sample)),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := w.CreateFormFile("sample", "sample.fp")
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(sample); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
