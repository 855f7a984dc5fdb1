// file: internal/testutil/testutil.go
// version: 2.0.0
// guid: 2b91227b-429f-494d-a5cd-4b9498225c27

// Package testutil holds shared helpers for tests that need a
// configured environment and a fake library tree on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdfalk/music-tagger/internal/config"
)

// LibraryEnv holds the pieces of a test library.
type LibraryEnv struct {
	RootDir string
	T       *testing.T
}

// SetupLibrary creates a temp library root and points the application
// configuration at it.
func SetupLibrary(t *testing.T) *LibraryEnv {
	t.Helper()

	root := t.TempDir()
	config.AppConfig = config.Config{
		RootDir:              root,
		MinConfidence:        0.6,
		FingerprintThreshold: 0.8,
		TrackNumberWidth:     2,
		ConcurrentReads:      2,
		SupportedExtensions:  []string{".mp3", ".flac", ".m4a", ".ogg"},
	}

	return &LibraryEnv{RootDir: root, T: t}
}

// WriteTrack creates a stub track file under the library root and
// returns its absolute path. Parent directories are created as needed.
func (env *LibraryEnv) WriteTrack(relPath string) string {
	env.T.Helper()
	path := filepath.Join(env.RootDir, relPath)
	require.NoError(env.T, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.T, os.WriteFile(path, []byte("stub-audio-"+relPath), 0644))
	return path
}

// WriteFile creates an arbitrary file (sidecar covers, library
// exports) under the library root.
func (env *LibraryEnv) WriteFile(relPath string, data []byte) string {
	env.T.Helper()
	path := filepath.Join(env.RootDir, relPath)
	require.NoError(env.T, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.T, os.WriteFile(path, data, 0644))
	return path
}
