// file: internal/tags/write.go
// version: 1.3.0
// guid: 9a0b1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d

package tags

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jdfalk/music-tagger/internal/fileops"
	"github.com/jdfalk/music-tagger/internal/models"
)

// ErrTaglibUnavailable is returned by the taglib writer when the binary
// was built without the taglib build tag.
var ErrTaglibUnavailable = errors.New("taglib support not compiled in")

// Write applies req to the file at path, atomically per file: on any
// writer failure the original container is restored from backup and an
// ErrWriteError is returned.
func Write(ctx context.Context, path string, req *WriteRequest) error {
	if req == nil || req.Empty() {
		return nil
	}
	if req.CoverAction == CoverReplace && req.CoverMIME == "" {
		req.CoverMIME = detectMimeType(req.CoverData)
	}

	guard, err := fileops.NewTagWriteGuard(path)
	if err != nil {
		return fmt.Errorf("prepare write for %s: %w", path, models.ErrWriteError)
	}

	if err := writeByFormat(ctx, path, req); err != nil {
		if restoreErr := guard.Restore(); restoreErr != nil {
			log.Printf("[ERROR] tags: restore failed for %s: %v", path, restoreErr)
		}
		return fmt.Errorf("write tags to %s: %v: %w", path, err, models.ErrWriteError)
	}
	guard.Commit()
	return nil
}

func writeByFormat(ctx context.Context, path string, req *WriteRequest) error {
	switch normalizeExt(path) {
	case ".mp3":
		return writeMP3Tags(path, req)
	case ".flac":
		return writeFLACTags(path, req)
	default:
		// Native taglib first, CLI writers when it is not compiled in.
		err := writeWithTaglib(path, req)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTaglibUnavailable) {
			return err
		}
		return writeWithCLI(ctx, path, req)
	}
}

// writeWithCLI shells out to a per-format external tool. Used for the
// container formats without a native Go writer.
func writeWithCLI(ctx context.Context, path string, req *WriteRequest) error {
	switch normalizeExt(path) {
	case ".m4a", ".m4b", ".aac":
		return writeWithAtomicParsley(ctx, path, req)
	default:
		return writeWithFFmpeg(ctx, path, req)
	}
}

func writeWithAtomicParsley(ctx context.Context, path string, req *WriteRequest) error {
	if _, err := exec.LookPath("AtomicParsley"); err != nil {
		return fmt.Errorf("AtomicParsley not found in PATH: %w", err)
	}
	args := []string{path, "--overWrite"}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	if req.Artist != "" {
		args = append(args, "--artist", req.Artist)
	}
	if req.Album != "" {
		args = append(args, "--album", req.Album)
	}
	if req.AlbumArtist != "" {
		args = append(args, "--albumArtist", req.AlbumArtist)
	}
	if req.Genre != "" {
		args = append(args, "--genre", req.Genre)
	}
	if req.Year != "" {
		args = append(args, "--year", req.Year)
	}
	if req.TrackNumber > 0 {
		track := fmt.Sprintf("%d", req.TrackNumber)
		if req.TotalTracks > 0 {
			track = fmt.Sprintf("%d/%d", req.TrackNumber, req.TotalTracks)
		}
		args = append(args, "--tracknum", track)
	}

	cmd := exec.CommandContext(ctx, "AtomicParsley", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("AtomicParsley failed: %v (%s)", err, firstLine(out))
	}
	return nil
}

// writeWithFFmpeg remuxes the file with replaced metadata. Covers the
// long tail of formats (ogg, opus, wma, wav).
func writeWithFFmpeg(ctx context.Context, path string, req *WriteRequest) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp"+normalizeExt(path))
	defer os.Remove(tmp)

	args := []string{"-y", "-i", path, "-c", "copy"}
	meta := func(k, v string) {
		if v != "" {
			args = append(args, "-metadata", k+"="+v)
		}
	}
	meta("title", req.Title)
	meta("artist", req.Artist)
	meta("album", req.Album)
	meta("album_artist", req.AlbumArtist)
	meta("genre", req.Genre)
	meta("date", req.Year)
	if req.TrackNumber > 0 {
		track := fmt.Sprintf("%d", req.TrackNumber)
		if req.TotalTracks > 0 {
			track = fmt.Sprintf("%d/%d", req.TrackNumber, req.TotalTracks)
		}
		meta("track", track)
	}
	args = append(args, tmp)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v (%s)", err, firstLine(out))
	}
	return os.Rename(tmp, path)
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
