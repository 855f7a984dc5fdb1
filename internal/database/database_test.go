// file: internal/database/database_test.go
// version: 2.0.0
// guid: 5c6d7e8f-9a0b-1c2d-3e4f-5a6b7c8d9e0a

package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestAudit(t *testing.T) *AuditStore {
	t.Helper()
	s, err := OpenAudit(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("OpenAudit failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuditScans(t *testing.T) {
	s := openTestAudit(t)

	if err := s.RecordScan("/music/a", 12); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordScan("/music/b", 3); err != nil {
		t.Fatal(err)
	}
	// Re-scanning a root collapses to the latest entry.
	if err := s.RecordScan("/music/a", 14); err != nil {
		t.Fatal(err)
	}

	scans, err := s.RecentScans(10)
	if err != nil {
		t.Fatalf("RecentScans failed: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("got %d scans, want 2", len(scans))
	}
	for _, e := range scans {
		if e.Root == "/music/a" && e.TrackCount != 14 {
			t.Errorf("re-scanned root count = %d, want 14", e.TrackCount)
		}
	}
}

func TestAuditCommits(t *testing.T) {
	s := openTestAudit(t)

	if err := s.RecordCommit("batch-1", "/music/a/01.mp3", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordCommit("batch-1", "/music/a/02.mp3", errors.New("write failed")); err != nil {
		t.Fatal(err)
	}

	entries, err := s.CommitsForBatch("batch-1")
	if err != nil {
		t.Fatalf("CommitsForBatch failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Ok || entries[1].Ok {
		t.Errorf("outcomes = %v, %v", entries[0].Ok, entries[1].Ok)
	}
	if entries[1].Error != "write failed" {
		t.Errorf("error = %q", entries[1].Error)
	}

	last, err := s.LastOutcome("/music/a/02.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Ok {
		t.Errorf("last outcome = %+v, want failed entry", last)
	}
	missing, err := s.LastOutcome("/never/committed.mp3")
	if err != nil || missing != nil {
		t.Errorf("uncommitted path = (%+v, %v), want (nil, nil)", missing, err)
	}
}

func TestResponseCacheRoundTrip(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("acoustid:1:abc"); ok {
		t.Error("hit on empty cache")
	}
	if err := c.Put("acoustid:1:abc", []byte(`{"status":"ok"}`)); err != nil {
		t.Fatal(err)
	}
	body, ok := c.Get("acoustid:1:abc")
	if !ok || string(body) != `{"status":"ok"}` {
		t.Errorf("get = (%q, %v)", body, ok)
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Now().Add(DefaultCacheTTL + time.Hour) }
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry served")
	}
}
