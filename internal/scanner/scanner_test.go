// file: internal/scanner/scanner_test.go
// version: 2.0.0
// guid: 2f3a4b5c-6d7e-8f9a-0b1c-2d3e4f5a6b7d

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/music-tagger/internal/config"
)

func setupConfig() {
	config.AppConfig.SupportedExtensions = []string{".mp3", ".flac"}
	config.AppConfig.ConcurrentReads = 2
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanDirectoryGroupsBySubdirectory(t *testing.T) {
	setupConfig()
	root := t.TempDir()
	writeFiles(t, root,
		"Album B/01 - One.mp3",
		"Album B/02 - Two.mp3",
		"Album A/01 - First.flac",
		"Album A/notes.txt",
		"loose.mp3",
	)

	res, err := ScanDirectoryParallel(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(res.Tracks()) != 4 {
		t.Fatalf("got %d tracks, want 4", len(res.Tracks()))
	}

	// Lexical order: root file sorts after the album directories.
	wantDirs := []string{
		filepath.Join(root, "Album A"),
		filepath.Join(root, "Album B"),
		root,
	}
	if len(res.Groups) != len(wantDirs) {
		t.Fatalf("got %d groups, want %d", len(res.Groups), len(wantDirs))
	}
	for i, g := range res.Groups {
		if g.Dir != wantDirs[i] {
			t.Errorf("group %d dir = %s, want %s", i, g.Dir, wantDirs[i])
		}
	}

	// Scan indexes follow the global ordering.
	for i, rec := range res.Tracks() {
		if rec.Index != i {
			t.Errorf("track %s index = %d, want %d", rec.Path, rec.Index, i)
		}
		if !rec.Selected {
			t.Errorf("track %s should start selected", rec.Path)
		}
	}
}

func TestScanDirectoryDeterministic(t *testing.T) {
	setupConfig()
	root := t.TempDir()
	writeFiles(t, root, "b.mp3", "a.mp3", "sub/c.mp3")

	first, err := ScanDirectoryParallel(context.Background(), root, 4)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ScanDirectoryParallel(context.Background(), root, 1)
	if err != nil {
		t.Fatal(err)
	}

	a, b := first.Tracks(), second.Tracks()
	if len(a) != len(b) {
		t.Fatalf("track counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Path != b[i].Path {
			t.Errorf("order differs at %d: %s vs %s", i, a[i].Path, b[i].Path)
		}
	}
}

func TestScanDirectoryUnreadableFileKeepsRecord(t *testing.T) {
	setupConfig()
	root := t.TempDir()
	writeFiles(t, root, "garbage.mp3")

	res, err := ScanDirectoryParallel(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	tracks := res.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if tracks[0].Err == "" {
		t.Error("unparseable file should carry a per-file error")
	}
	if res.Track(tracks[0].Path) != tracks[0] {
		t.Error("path index does not resolve the record")
	}
}

func TestScanDirectorySkipsHiddenDirs(t *testing.T) {
	setupConfig()
	root := t.TempDir()
	writeFiles(t, root, "keep.mp3", ".trash/skip.mp3")

	res, err := ScanDirectoryParallel(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(res.Tracks()) != 1 {
		t.Errorf("got %d tracks, want 1", len(res.Tracks()))
	}
}

func TestScanDirectorySkipsHardlinks(t *testing.T) {
	setupConfig()
	root := t.TempDir()
	writeFiles(t, root, "orig.mp3")
	if err := os.Link(filepath.Join(root, "orig.mp3"), filepath.Join(root, "copy.mp3")); err != nil {
		t.Skipf("hardlinks unavailable: %v", err)
	}

	res, err := ScanDirectoryParallel(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(res.Tracks()) != 1 {
		t.Errorf("got %d tracks, want 1 after hardlink dedup", len(res.Tracks()))
	}
}
