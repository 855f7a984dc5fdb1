// file: cmd/commands_test.go
// version: 1.0.0
// guid: 0e1f2a3b-4c5d-6e7f-8a9b-0c1d2e3f4a5b

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdfalk/music-tagger/internal/config"
	"github.com/jdfalk/music-tagger/internal/tags"
	"github.com/jdfalk/music-tagger/internal/testutil"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestVersionCommand(t *testing.T) {
	if err := runCommand(t, "version"); err != nil {
		t.Fatalf("version failed: %v", err)
	}
}

func TestScanCommandRequiresRoot(t *testing.T) {
	tmp := t.TempDir()
	err := runCommand(t, "scan",
		"--dir", "",
		"--db", filepath.Join(tmp, "audit.db"),
		"--cache", filepath.Join(tmp, "cache"))
	if err == nil {
		t.Fatal("scan without a root should fail")
	}
}

func TestScanCommand(t *testing.T) {
	env := testutil.SetupLibrary(t)
	env.WriteTrack("Album A/01 - One.mp3")
	env.WriteTrack("Album A/02 - Two.mp3")

	tmp := t.TempDir()
	auditPath := filepath.Join(tmp, "audit.db")
	err := runCommand(t, "scan",
		"--dir", env.RootDir,
		"--db", auditPath,
		"--cache", filepath.Join(tmp, "cache"))
	require.NoError(t, err)

	// The scan is recorded in the audit store.
	if _, statErr := os.Stat(auditPath); statErr != nil {
		t.Errorf("audit database missing: %v", statErr)
	}
}

func TestResolveCommandOffline(t *testing.T) {
	env := testutil.SetupLibrary(t)
	env.WriteTrack("Artist - Song.mp3")

	tmp := t.TempDir()
	err := runCommand(t, "resolve",
		"--offline",
		"--dir", env.RootDir,
		"--db", filepath.Join(tmp, "audit.db"),
		"--cache", filepath.Join(tmp, "cache"))
	require.NoError(t, err)
}

func TestImportCommandRequiresLibrary(t *testing.T) {
	env := testutil.SetupLibrary(t)
	env.WriteTrack("a.mp3")
	config.AppConfig.ITunesLibrary = ""

	tmp := t.TempDir()
	err := runCommand(t, "import",
		"--dir", env.RootDir,
		"--library", "",
		"--db", filepath.Join(tmp, "audit.db"),
		"--cache", filepath.Join(tmp, "cache"))
	if err == nil {
		t.Fatal("import without a library path should fail")
	}
}

func TestCommitOptionsFor(t *testing.T) {
	tests := []struct {
		flag    string
		want    tags.CoverAction
		wantErr bool
	}{
		{"", tags.CoverKeep, false},
		{"keep", tags.CoverKeep, false},
		{"replace", tags.CoverReplace, false},
		{"remove", tags.CoverRemove, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		opts, err := commitOptionsFor(tt.flag)
		if tt.wantErr {
			if err == nil {
				t.Errorf("commitOptionsFor(%q) should fail", tt.flag)
			}
			continue
		}
		if err != nil {
			t.Errorf("commitOptionsFor(%q) error: %v", tt.flag, err)
			continue
		}
		if opts.CoverAction != tt.want {
			t.Errorf("commitOptionsFor(%q) = %v, want %v", tt.flag, opts.CoverAction, tt.want)
		}
	}
}
