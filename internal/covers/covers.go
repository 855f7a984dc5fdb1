// file: internal/covers/covers.go
// version: 1.2.0
// guid: 3e4f5a6b-7c8d-9e0f-1a2b-3c4d5e6f7a8b

// Package covers discovers, fetches and summarizes cover art for tracks.
package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"github.com/jdfalk/music-tagger/internal/models"
)

const (
	maxDownloadBytes = 10 * 1024 * 1024
	displaySize      = 300

	httpTimeout = 30 * time.Second
)

// Common cover art filenames looked for next to a track.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
}

// FindExternal looks for a cover image file in the directory containing
// trackPath. Returns nil when nothing usable is found.
func FindExternal(trackPath string) *models.CoverInfo {
	dir := filepath.Dir(trackPath)
	for _, name := range coverArtFilenames {
		for _, candidate := range []string{name, strings.ToUpper(name)} {
			imgPath := filepath.Join(dir, candidate)
			data, err := os.ReadFile(imgPath)
			if err != nil {
				continue
			}
			info := &models.CoverInfo{
				Location: models.CoverExternal,
				Path:     imgPath,
			}
			if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				info.PixelSize = maxDim(cfg.Width, cfg.Height)
				info.Format = format
			}
			return info
		}
	}
	return nil
}

// Merge combines the embedded and external views of a track's cover art
// into one descriptor.
func Merge(embedded, external *models.CoverInfo) *models.CoverInfo {
	switch {
	case embedded != nil && external != nil:
		merged := *embedded
		merged.Location = models.CoverBoth
		merged.Path = external.Path
		if merged.PixelSize == 0 {
			merged.PixelSize = external.PixelSize
		}
		return &merged
	case embedded != nil:
		return embedded
	case external != nil:
		return external
	default:
		return &models.CoverInfo{Location: models.CoverNone}
	}
}

// Status renders the short cover descriptor shown in track listings:
// "I300" for embedded art, "E300" for an external file, "B300" for both,
// "-" for none. The number is the square pixel size when known.
func Status(info *models.CoverInfo) string {
	if info == nil {
		return "-"
	}
	var letter string
	switch info.Location {
	case models.CoverEmbedded:
		letter = "I"
	case models.CoverExternal:
		letter = "E"
	case models.CoverBoth:
		letter = "B"
	default:
		return "-"
	}
	if info.PixelSize > 0 {
		return letter + strconv.Itoa(info.PixelSize)
	}
	return letter
}

// Download fetches a cover image over HTTP. Only image/* content types
// are accepted and the body is capped at 10 MB.
func Download(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("empty cover URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download cover: %w", models.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected content type: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read cover body: %w", err)
	}
	return data, contentType, nil
}

// DisplayThumbnail scales an image down to the 300px display size used
// by listings. Images already small enough pass through untouched.
func DisplayThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	bounds := img.Bounds()
	if maxDim(bounds.Dx(), bounds.Dy()) <= displaySize {
		return data, nil
	}

	thumb := resize.Thumbnail(displaySize, displaySize, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func maxDim(w, h int) int {
	if w > h {
		return w
	}
	return h
}
