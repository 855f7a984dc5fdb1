// file: internal/itunes/library.go
// version: 2.0.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8f

// Package itunes reads an "iTunes Music Library.xml" export and feeds
// its hand-curated metadata into scanned tracks. The library is a
// plist dictionary keyed by track id; only the tag-relevant fields are
// kept.
package itunes

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"howett.net/plist"
)

// Track is one library entry, already reduced to the fields the
// tagger cares about.
type Track struct {
	TrackID     int
	Name        string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
	TrackCount  int
	Path        string // decoded local path, empty when not a file
}

// Library is a parsed iTunes XML export indexed by local path.
type Library struct {
	MusicFolder string
	byPath      map[string]*Track
}

type plistLibrary struct {
	MusicFolder string                 `plist:"Music Folder"`
	Tracks      map[string]*plistTrack `plist:"Tracks"`
}

type plistTrack struct {
	TrackID     int    `plist:"Track ID"`
	Name        string `plist:"Name"`
	Artist      string `plist:"Artist"`
	AlbumArtist string `plist:"Album Artist"`
	Album       string `plist:"Album"`
	Genre       string `plist:"Genre"`
	Year        int    `plist:"Year"`
	TrackNumber int    `plist:"Track Number"`
	TrackCount  int    `plist:"Track Count"`
	Location    string `plist:"Location"`
}

// Load parses a library XML file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	return Parse(data)
}

// Parse parses library XML bytes.
func Parse(data []byte) (*Library, error) {
	var raw plistLibrary
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal plist: %w", err)
	}

	lib := &Library{
		MusicFolder: raw.MusicFolder,
		byPath:      make(map[string]*Track, len(raw.Tracks)),
	}
	for _, rt := range raw.Tracks {
		localPath, err := DecodeLocation(rt.Location)
		if err != nil || localPath == "" {
			continue
		}
		lib.byPath[localPath] = &Track{
			TrackID:     rt.TrackID,
			Name:        rt.Name,
			Artist:      rt.Artist,
			AlbumArtist: rt.AlbumArtist,
			Album:       rt.Album,
			Genre:       rt.Genre,
			Year:        rt.Year,
			TrackNumber: rt.TrackNumber,
			TrackCount:  rt.TrackCount,
			Path:        localPath,
		}
	}
	return lib, nil
}

// Lookup returns the library entry for a local path, or nil.
func (l *Library) Lookup(path string) *Track {
	return l.byPath[path]
}

// Len returns the number of file-backed entries.
func (l *Library) Len() int { return len(l.byPath) }

// DecodeLocation decodes an iTunes file:// URL to a local filesystem
// path. Non-file locations (streams, remote URLs) return empty.
func DecodeLocation(location string) (string, error) {
	if location == "" {
		return "", nil
	}
	if !strings.HasPrefix(location, "file://") {
		return "", nil
	}
	location = strings.TrimPrefix(location, "file://localhost")
	location = strings.TrimPrefix(location, "file://")

	decoded, err := url.QueryUnescape(location)
	if err != nil {
		return "", fmt.Errorf("decode location: %w", err)
	}
	return decoded, nil
}
