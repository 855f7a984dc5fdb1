// file: internal/heuristics/filename.go
// version: 1.4.0
// guid: 5c6d7e8f-9a0b-1c2d-3e4f-5a6b7c8d9e0f

package heuristics

import (
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Result holds candidate fields parsed from a filename and its directory
// context. Pure derivation, no I/O; absent fields stay zero.
type Result struct {
	Artist      string
	Title       string
	Album       string
	TrackNumber int     // 0 if not found, otherwise in [1, 999]
	Confidence  float64 // 0.8 for structured names, 0.6 for weak guesses
}

// Empty reports whether nothing at all was derived.
func (r Result) Empty() bool {
	return r.Artist == "" && r.Title == "" && r.Album == "" && r.TrackNumber == 0
}

// Patterns are precompiled at package level and tried in order.
var (
	// Matches "NN - Artist - Title" and "NN. Artist - Title".
	// Examples:
	//   01 - Miles Davis - So What
	//   07. Nina Simone - Feeling Good
	reNumArtistTitle = regexp.MustCompile(`^(\d{1,3})\s*(?:-|\.)\s+(.+?)\s+-\s+(.+)$`)

	// Matches "Artist - Title" with exactly one " - " split point.
	reArtistTitle = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)

	// Matches "NN - Title", "NN. Title" and "NN Title".
	reNumTitle = regexp.MustCompile(`^(\d{1,3})\s*(?:-|\.|_)?\s+(.+)$`)

	// Matches "Artist - NN - Title" (number between the separators).
	reArtistNumTitle = regexp.MustCompile(`^(.+?)\s+-\s+(\d{1,3})\s+-\s+(.+)$`)
)

// filenamePattern is one matcher in the ordered strategy list. The first
// pattern whose try func returns true wins.
type filenamePattern struct {
	name string
	try  func(stem string, r *Result) bool
}

// filenamePatterns is tried in order; the sequence runs from the most
// structured name shape to the weakest fallback.
var filenamePatterns = []filenamePattern{
	{"artist-num-title", tryArtistNumTitle},
	{"num-artist-title", tryNumArtistTitle},
	{"artist-title", tryArtistTitle},
	{"num-title", tryNumTitle},
	{"bare-title", tryBareTitle},
}

// AnalyzeFilename derives artist/title/trackNumber candidates from a
// file's base name. Deterministic, never fails; the worst case is an
// all-absent Result.
func AnalyzeFilename(filename string) Result {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.TrimSpace(stem)

	var r Result
	if stem == "" {
		return r
	}

	for _, p := range filenamePatterns {
		if p.try(stem, &r) {
			log.Printf("[DEBUG] heuristics: %q matched pattern %s (conf %.1f)", stem, p.name, r.Confidence)
			return r
		}
	}
	return r
}

func tryArtistNumTitle(stem string, r *Result) bool {
	m := reArtistNumTitle.FindStringSubmatch(stem)
	if m == nil {
		return false
	}
	n, ok := parseTrackNum(m[2])
	if !ok {
		return false
	}
	r.Artist = strings.TrimSpace(m[1])
	r.TrackNumber = n
	r.Title = strings.TrimSpace(m[3])
	r.Confidence = 0.8
	return r.Artist != "" && r.Title != ""
}

func tryNumArtistTitle(stem string, r *Result) bool {
	m := reNumArtistTitle.FindStringSubmatch(stem)
	if m == nil {
		return false
	}
	n, ok := parseTrackNum(m[1])
	if !ok {
		return false
	}
	artist := strings.TrimSpace(m[2])
	title := strings.TrimSpace(m[3])
	if artist == "" || title == "" {
		return false
	}
	r.TrackNumber = n
	r.Artist = artist
	r.Title = title
	r.Confidence = 0.8
	return true
}

func tryArtistTitle(stem string, r *Result) bool {
	// Require exactly one " - " split point so "A - B - C" never lands here.
	if strings.Count(stem, " - ") != 1 {
		return false
	}
	m := reArtistTitle.FindStringSubmatch(stem)
	if m == nil {
		return false
	}
	artist := strings.TrimSpace(m[1])
	title := strings.TrimSpace(m[2])
	if artist == "" || title == "" {
		return false
	}
	// A purely numeric left side is a track number, not an artist.
	if _, ok := parseTrackNum(artist); ok {
		return false
	}
	r.Artist = artist
	r.Title = title
	r.Confidence = 0.8
	return true
}

func tryNumTitle(stem string, r *Result) bool {
	m := reNumTitle.FindStringSubmatch(stem)
	if m == nil {
		return false
	}
	n, ok := parseTrackNum(m[1])
	if !ok {
		return false
	}
	title := strings.TrimSpace(m[2])
	if title == "" {
		return false
	}
	r.TrackNumber = n
	r.Title = title
	r.Confidence = 0.6
	return true
}

func tryBareTitle(stem string, r *Result) bool {
	r.Title = stem
	r.Confidence = 0.6
	return true
}

// parseTrackNum parses a 1-3 digit track number. The numeric value must
// land in [1, 99]; leading zeros are dropped when stored as int.
func parseTrackNum(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 3 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 99 {
		return 0, false
	}
	return n, true
}
