// file: internal/fingerprint/fingerprint_test.go
// version: 1.1.0
// guid: 9e0f1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4c

package fingerprint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jdfalk/music-tagger/internal/models"
)

type fakeProvider struct {
	name   string
	result *models.RecognitionResult
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(ctx context.Context, fp *Fingerprint) (*models.RecognitionResult, error) {
	f.calls++
	return f.result, f.err
}

func testFingerprint() *Fingerprint {
	return &Fingerprint{Duration: 213, Fingerprint: "AQADtMmybfGO8NCNEESLnzHyXNOHeHnG"}
}

func TestServiceFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "first", result: &models.RecognitionResult{Artist: "Orbital", Title: "Halcyon", Confidence: 0.95, SourceProvider: "first"}}
	second := &fakeProvider{name: "second", result: &models.RecognitionResult{Artist: "Wrong", Title: "Wrong", Confidence: 0.99, SourceProvider: "second"}}
	svc := NewService(NewCalculator(""), first, second)

	res, err := svc.lookup(context.Background(), testFingerprint())
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if res.SourceProvider != "first" {
		t.Errorf("expected first provider to win, got %q", res.SourceProvider)
	}
	if second.calls != 0 {
		t.Errorf("second provider should not be consulted, got %d calls", second.calls)
	}
}

func TestServiceFallsThroughOnMiss(t *testing.T) {
	cases := []struct {
		name     string
		firstErr error
	}{
		{"no match", models.ErrNoMatch},
		{"ambiguous", models.ErrAmbiguousCandidate},
		{"unavailable", models.ErrProviderUnavailable},
		{"rate limited", models.ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := &fakeProvider{name: "first", err: tc.firstErr}
			second := &fakeProvider{name: "second", result: &models.RecognitionResult{Artist: "Orbital", Title: "Halcyon", Confidence: 0.9, SourceProvider: "second"}}
			svc := NewService(NewCalculator(""), first, second)

			res, err := svc.lookup(context.Background(), testFingerprint())
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}
			if res.SourceProvider != "second" {
				t.Errorf("expected fallback provider, got %q", res.SourceProvider)
			}
		})
	}
}

func TestServiceAllProvidersMiss(t *testing.T) {
	first := &fakeProvider{name: "first", err: models.ErrNoMatch}
	second := &fakeProvider{name: "second", err: models.ErrProviderUnavailable}
	svc := NewService(NewCalculator(""), first, second)

	_, err := svc.lookup(context.Background(), testFingerprint())
	if !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch after exhausting providers, got %v", err)
	}
}

func TestServiceCancelledContext(t *testing.T) {
	first := &fakeProvider{name: "first", result: &models.RecognitionResult{Confidence: 1}}
	svc := NewService(NewCalculator(""), first)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.lookup(ctx, testFingerprint()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if first.calls != 0 {
		t.Errorf("provider should not run after cancellation")
	}
}

func TestCalculatorMissingBinary(t *testing.T) {
	calc := NewCalculator("/nonexistent/fpcalc")
	if calc.Available() {
		t.Fatal("nonexistent binary reported available")
	}
	_, err := calc.Generate(context.Background(), "song.mp3")
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestAcoustIDLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client") == "" {
			t.Error("missing client parameter")
		}
		w.Write([]byte(`{"status":"ok","results":[{"id":"fp-1","score":0.93,"recordings":[{"id":"rec-1","title":"Halcyon","artists":[{"name":"Orbital"}],"releasegroups":[{"title":"Orbital 2"}]}]}]}`))
	}))
	defer srv.Close()

	c := NewAcoustIDClient("key", time.Millisecond, 0.8, nil)
	c.baseURL = srv.URL

	res, err := c.Lookup(context.Background(), testFingerprint())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if res.Artist != "Orbital" || res.Title != "Halcyon" || res.Album != "Orbital 2" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.ExternalIDs["musicbrainz_recording"] != "rec-1" {
		t.Errorf("missing recording id: %v", res.ExternalIDs)
	}
}

func TestAcoustIDBelowThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","results":[{"id":"fp-1","score":0.42,"recordings":[{"title":"Something","artists":[{"name":"Someone"}]}]}]}`))
	}))
	defer srv.Close()

	c := NewAcoustIDClient("key", time.Millisecond, 0.8, nil)
	c.baseURL = srv.URL

	_, err := c.Lookup(context.Background(), testFingerprint())
	if !errors.Is(err, models.ErrAmbiguousCandidate) {
		t.Errorf("expected ErrAmbiguousCandidate for weak score, got %v", err)
	}
}

func TestAcoustIDEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","results":[]}`))
	}))
	defer srv.Close()

	c := NewAcoustIDClient("key", time.Millisecond, 0.8, nil)
	c.baseURL = srv.URL

	_, err := c.Lookup(context.Background(), testFingerprint())
	if !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

type memCache struct{ m map[string][]byte }

func (c *memCache) Get(key string) ([]byte, bool) { v, ok := c.m[key]; return v, ok }
func (c *memCache) Put(key string, value []byte) error {
	c.m[key] = value
	return nil
}

func TestAcoustIDUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"status":"ok","results":[{"id":"fp-1","score":0.9,"recordings":[{"title":"Halcyon","artists":[{"name":"Orbital"}]}]}]}`))
	}))
	defer srv.Close()

	c := NewAcoustIDClient("key", time.Millisecond, 0.8, &memCache{m: map[string][]byte{}})
	c.baseURL = srv.URL

	for i := 0; i < 2; i++ {
		if _, err := c.Lookup(context.Background(), testFingerprint()); err != nil {
			t.Fatalf("Lookup %d failed: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream request, got %d", hits)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := cacheKey("acoustid", testFingerprint())
	b := cacheKey("acoustid", testFingerprint())
	if a != b {
		t.Errorf("cache key not stable: %q vs %q", a, b)
	}
	other := cacheKey("acoustid", &Fingerprint{Duration: 213, Fingerprint: "different"})
	if a == other {
		t.Error("distinct fingerprints produced the same cache key")
	}
}
