// file: internal/covers/covers_test.go
// version: 1.1.0
// guid: 4f5a6b7c-8d9e-0f1a-2b3c-4d5e6f7a8b9c

package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/music-tagger/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFindExternal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cover.png"), pngBytes(t, 300, 300), 0o644); err != nil {
		t.Fatal(err)
	}

	info := FindExternal(filepath.Join(dir, "01 - Song.mp3"))
	if info == nil {
		t.Fatal("expected external cover")
	}
	if info.Location != models.CoverExternal {
		t.Errorf("location = %s", info.Location)
	}
	if info.PixelSize != 300 {
		t.Errorf("pixel size = %d, want 300", info.PixelSize)
	}
	if info.Format != "png" {
		t.Errorf("format = %q, want png", info.Format)
	}
}

func TestFindExternalNone(t *testing.T) {
	if info := FindExternal(filepath.Join(t.TempDir(), "track.mp3")); info != nil {
		t.Errorf("expected nil for bare directory, got %+v", info)
	}
}

func TestMerge(t *testing.T) {
	embedded := &models.CoverInfo{Location: models.CoverEmbedded, PixelSize: 500}
	external := &models.CoverInfo{Location: models.CoverExternal, PixelSize: 300, Path: "/x/cover.jpg"}

	both := Merge(embedded, external)
	if both.Location != models.CoverBoth {
		t.Errorf("merged location = %s, want both", both.Location)
	}
	if both.PixelSize != 500 {
		t.Errorf("merged size should prefer embedded, got %d", both.PixelSize)
	}

	if got := Merge(nil, external); got.Location != models.CoverExternal {
		t.Errorf("external-only location = %s", got.Location)
	}
	if got := Merge(nil, nil); got.Location != models.CoverNone {
		t.Errorf("none location = %s", got.Location)
	}
}

// A 300px external cover displays as "E300".
func TestStatus(t *testing.T) {
	tests := []struct {
		info *models.CoverInfo
		want string
	}{
		{nil, "-"},
		{&models.CoverInfo{Location: models.CoverNone}, "-"},
		{&models.CoverInfo{Location: models.CoverExternal, PixelSize: 300}, "E300"},
		{&models.CoverInfo{Location: models.CoverEmbedded, PixelSize: 500}, "I500"},
		{&models.CoverInfo{Location: models.CoverBoth, PixelSize: 300}, "B300"},
		{&models.CoverInfo{Location: models.CoverEmbedded}, "I"},
	}
	for _, tt := range tests {
		if got := Status(tt.info); got != tt.want {
			t.Errorf("Status(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestDownload(t *testing.T) {
	payload := pngBytes(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	data, contentType, err := Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("content type = %q", contentType)
	}
	if !bytes.Equal(data, payload) {
		t.Error("payload mismatch")
	}
}

func TestDownloadRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	if _, _, err := Download(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-image content type")
	}
}

func TestDisplayThumbnail(t *testing.T) {
	big := pngBytes(t, 600, 600)
	thumb, err := DisplayThumbnail(big)
	if err != nil {
		t.Fatalf("DisplayThumbnail: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width > 300 || cfg.Height > 300 {
		t.Errorf("thumbnail %dx%d exceeds 300px", cfg.Width, cfg.Height)
	}

	small := pngBytes(t, 120, 120)
	same, err := DisplayThumbnail(small)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(same, small) {
		t.Error("small images should pass through untouched")
	}
}
