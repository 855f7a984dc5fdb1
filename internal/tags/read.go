// file: internal/tags/read.go
// version: 1.1.0
// guid: 8f9a0b1c-2d3e-4f5a-6b7c-8d9e0f1a2b3c

package tags

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/jdfalk/music-tagger/internal/models"
)

// Read extracts embedded metadata from an audio file. A file whose
// container cannot be parsed yields ErrUnreadableFile; a parseable file
// with no tags yields nil Tags and no error.
func Read(path string) (*models.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, models.ErrUnreadableFile)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return nil, nil
		}
		log.Printf("[DEBUG] tags: unreadable container %s: %v", path, err)
		return nil, fmt.Errorf("parse %s: %w", path, models.ErrUnreadableFile)
	}

	t := &models.Tags{
		Artist:      strings.TrimSpace(m.Artist()),
		Title:       strings.TrimSpace(m.Title()),
		Album:       strings.TrimSpace(m.Album()),
		AlbumArtist: strings.TrimSpace(m.AlbumArtist()),
		Year:        m.Year(),
	}
	if g := strings.TrimSpace(m.Genre()); g != "" {
		// Multi-genre tags arrive separator-joined; primary stays first.
		for _, part := range strings.FieldsFunc(g, func(r rune) bool { return r == ';' || r == '/' }) {
			if p := strings.TrimSpace(part); p != "" {
				t.Genres = append(t.Genres, p)
			}
		}
	}
	t.TrackNumber, t.TotalTracks = m.Track()

	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		info := &models.CoverInfo{
			Location: models.CoverEmbedded,
			Format:   strings.TrimPrefix(detectMimeType(pic.Data), "image/"),
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(pic.Data)); err == nil {
			info.PixelSize = maxDim(cfg.Width, cfg.Height)
		}
		t.Cover = info
	}

	if t.Artist == "" && t.Title == "" && t.Album == "" && t.TrackNumber == 0 && t.Cover == nil {
		return nil, nil
	}
	return t, nil
}

// EmbeddedCoverData returns the raw embedded cover image, if any.
func EmbeddedCoverData(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, models.ErrUnreadableFile)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", nil
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", nil
	}
	mime := pic.MIMEType
	if mime == "" {
		mime = detectMimeType(pic.Data)
	}
	return pic.Data, mime, nil
}

func maxDim(w, h int) int {
	if w > h {
		return w
	}
	return h
}
