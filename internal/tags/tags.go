// file: internal/tags/tags.go
// version: 1.2.0
// guid: 7e8f9a0b-1c2d-3e4f-5a6b-7c8d9e0f1a2b

// Package tags reads and writes embedded metadata across the supported
// audio containers. Reads go through dhowden/tag for every format;
// writes use a native writer per container where one exists and fall
// back to taglib or an external CLI otherwise. Every write is wrapped in
// a backup guard so a failure never leaves a half-written file.
package tags

import (
	"bytes"
	"strings"
)

// CoverAction selects what happens to embedded cover art on write.
type CoverAction int

const (
	// CoverKeep leaves existing cover art untouched.
	CoverKeep CoverAction = iota
	// CoverReplace embeds the supplied image, replacing any existing art.
	CoverReplace
	// CoverRemove strips embedded cover art.
	CoverRemove
)

// WriteRequest carries the final field values for one file.
type WriteRequest struct {
	Artist      string
	Title       string
	Album       string
	AlbumArtist string
	Genre       string
	Year        string // free-form date text, usually just the year
	TrackNumber int    // 0 = leave unset
	TotalTracks int

	CoverAction CoverAction
	CoverData   []byte // required for CoverReplace
	CoverMIME   string // optional; sniffed from CoverData when empty
}

// Empty reports whether the request carries nothing to write.
func (w *WriteRequest) Empty() bool {
	return w.Artist == "" && w.Title == "" && w.Album == "" &&
		w.AlbumArtist == "" && w.Genre == "" && w.Year == "" &&
		w.TrackNumber == 0 && w.CoverAction == CoverKeep
}

// detectMimeType sniffs an image MIME type from magic bytes.
func detectMimeType(data []byte) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// normalizeExt returns the lowercased file extension including the dot.
func normalizeExt(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return strings.ToLower(path[i:])
	}
	return ""
}
