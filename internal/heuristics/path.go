// file: internal/heuristics/path.go
// version: 1.2.0
// guid: 0d1e2f3a-4b5c-6d7e-8f9a-0b1c2d3e4f5a

package heuristics

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PathResult holds artist/album candidates derived from the directory
// hierarchy containing a track.
type PathResult struct {
	Artist     string
	Album      string
	Confidence float64
}

// Empty reports whether nothing was derived from the path.
func (r PathResult) Empty() bool { return r.Artist == "" && r.Album == "" }

// Matches "Artist - Album" directory names with exactly one separator.
var reDirArtistAlbum = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)

// genericSegments are directory names that never become an artist or
// album. Lowercased for comparison.
var genericSegments = map[string]bool{
	"":                true,
	".":               true,
	"music":           true,
	"library":         true,
	"media":           true,
	"audio":           true,
	"downloads":       true,
	"download":        true,
	"mp3":             true,
	"mp3s":            true,
	"flac":            true,
	"tracks":          true,
	"songs":           true,
	"albums":          true,
	"singles":         true,
	"compilations":    true,
	"various artists": true,
	"various":         true,
	"va":              true,
	"unknown":         true,
	"unknown artist":  true,
	"unsorted":        true,
	"new":             true,
	"mnt":             true,
	"home":            true,
	"tmp":             true,
}

// IsGenericSegment reports whether a directory name is library plumbing
// rather than a usable artist or album name.
func IsGenericSegment(seg string) bool {
	return genericSegments[strings.ToLower(strings.TrimSpace(seg))]
}

// AnalyzePath derives artist/album candidates from the directories that
// contain path. Pure function over the path string; the filesystem is
// never consulted.
//
// Recognized layouts, strongest first:
//
//	.../Artist - Album/file      → artist+album, confidence 0.8
//	.../Artist/Album/file        → artist+album, confidence 0.7
//	.../Music/Artist/Album/file  → artist+album, confidence 0.6
func AnalyzePath(path string) PathResult {
	segs := parentSegments(path)
	n := len(segs)
	if n == 0 {
		return PathResult{}
	}

	parent := segs[n-1]

	// "Artist - Album" as the immediate parent.
	if strings.Count(parent, " - ") == 1 && !IsGenericSegment(parent) {
		if m := reDirArtistAlbum.FindStringSubmatch(parent); m != nil {
			artist := strings.TrimSpace(m[1])
			album := strings.TrimSpace(m[2])
			if artist != "" && album != "" && !IsGenericSegment(artist) && !IsGenericSegment(album) {
				return PathResult{Artist: artist, Album: album, Confidence: 0.8}
			}
		}
	}

	// Artist/Album nesting.
	if n >= 2 {
		artist := strings.TrimSpace(segs[n-2])
		album := strings.TrimSpace(parent)
		if !IsGenericSegment(artist) && !IsGenericSegment(album) {
			conf := 0.7
			// A library root right above the artist weakens the guess.
			if n >= 3 && IsGenericSegment(segs[n-3]) {
				conf = 0.6
			}
			return PathResult{Artist: artist, Album: album, Confidence: conf}
		}
	}

	// Lone non-generic parent: treat as album only.
	if !IsGenericSegment(parent) {
		return PathResult{Album: strings.TrimSpace(parent), Confidence: 0.6}
	}
	return PathResult{}
}

// parentSegments returns the directory components above path, normalized
// to forward slashes, with empty components removed.
func parentSegments(path string) []string {
	dir := filepath.ToSlash(filepath.Dir(path))
	if dir == "." || dir == "/" {
		return nil
	}
	parts := strings.Split(dir, "/")
	var segs []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
