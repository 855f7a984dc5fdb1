// file: internal/tags/taglib_support.go
// version: 1.4.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

//go:build taglib

// TagLib native writer support (optional via build tag 'taglib').
// Default builds exclude this file and fall back to CLI writers.

package tags

import (
	"fmt"
	"path/filepath"
	"strconv"

	taglib "go.senan.xyz/taglib"
)

// taglibAvailable indicates the native taglib path is compiled in.
var taglibAvailable = true

// writeWithTaglib writes the supplied fields with TagLib property keys.
func writeWithTaglib(filePath string, req *WriteRequest) error {
	abs, _ := filepath.Abs(filePath)

	props := make(map[string][]string)
	if req.Title != "" {
		props[taglib.Title] = []string{req.Title}
	}
	if req.Artist != "" {
		props[taglib.Artist] = []string{req.Artist}
	}
	if req.Album != "" {
		props[taglib.Album] = []string{req.Album}
	}
	if req.AlbumArtist != "" {
		props[taglib.AlbumArtist] = []string{req.AlbumArtist}
	}
	if req.Genre != "" {
		props[taglib.Genre] = []string{req.Genre}
	}
	if req.Year != "" {
		props[taglib.Date] = []string{req.Year}
	}
	if req.TrackNumber > 0 {
		props[taglib.TrackNumber] = []string{strconv.Itoa(req.TrackNumber)}
	}

	if len(props) == 0 {
		return nil
	}
	if err := taglib.WriteTags(abs, props, 0); err != nil {
		return fmt.Errorf("taglib write failed: %w", err)
	}
	return nil
}
