// file: internal/scanner/scanner.go
// version: 2.1.0
// guid: 1e2f3a4b-5c6d-7e8f-9a0b-1c2d3e4f5a6c

// Package scanner discovers audio files under a root directory and
// builds the initial track records for a session. Discovery order is
// deterministic: directories in lexical walk order, files sorted by
// name within each directory.
package scanner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/jdfalk/music-tagger/internal/config"
	"github.com/jdfalk/music-tagger/internal/covers"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/tags"
)

// DirectoryGroup is one directory's worth of tracks, in scan order.
type DirectoryGroup struct {
	Dir    string                `json:"dir"`
	Tracks []*models.TrackRecord `json:"tracks"`
}

// Result is a completed scan: groups ordered by subdirectory, plus a
// flat path index for lookups.
type Result struct {
	Root   string
	Groups []DirectoryGroup

	byPath map[string]*models.TrackRecord
}

// Track returns the record for path, or nil.
func (r *Result) Track(path string) *models.TrackRecord {
	return r.byPath[path]
}

// Tracks returns every record in scan order.
func (r *Result) Tracks() []*models.TrackRecord {
	var out []*models.TrackRecord
	for _, g := range r.Groups {
		out = append(out, g.Tracks...)
	}
	return out
}

// ScanDirectory walks rootDir and returns records grouped by
// directory. Embedded tags are read for each file with a bounded
// worker pool; a file that cannot be read still gets a record with
// its error attached.
func ScanDirectory(ctx context.Context, rootDir string) (*Result, error) {
	return ScanDirectoryParallel(ctx, rootDir, config.AppConfig.ConcurrentReads)
}

// ScanDirectoryParallel is ScanDirectory with an explicit worker count.
func ScanDirectoryParallel(ctx context.Context, rootDir string, workers int) (*Result, error) {
	if workers < 1 {
		workers = 1
	}

	paths, err := collectPaths(rootDir)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] scanner: found %d audio files under %s", len(paths), rootDir)

	result := &Result{
		Root:   rootDir,
		byPath: make(map[string]*models.TrackRecord, len(paths)),
	}

	var records []*models.TrackRecord
	for i, p := range paths {
		rec := models.NewTrackRecord(i, p)
		rec.Selected = true
		records = append(records, rec)
		result.byPath[p] = rec
	}

	if err := readTagsParallel(ctx, records, workers); err != nil {
		return nil, err
	}

	// Group records by directory, preserving scan order.
	var order []string
	grouped := make(map[string][]*models.TrackRecord)
	for _, rec := range records {
		dir := filepath.Dir(rec.Path)
		if _, seen := grouped[dir]; !seen {
			order = append(order, dir)
		}
		grouped[dir] = append(grouped[dir], rec)
	}
	for _, dir := range order {
		result.Groups = append(result.Groups, DirectoryGroup{Dir: dir, Tracks: grouped[dir]})
	}
	return result, nil
}

// collectPaths walks the tree and returns supported audio files in
// deterministic order. Hardlinked duplicates are skipped via inode.
func collectPaths(rootDir string) ([]string, error) {
	supported := make(map[string]bool, len(config.AppConfig.SupportedExtensions))
	for _, ext := range config.AppConfig.SupportedExtensions {
		supported[ext] = true
	}

	var paths []string
	seenInodes := make(map[uint64]string)

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Printf("[WARN] scanner: %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != rootDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		if info, statErr := d.Info(); statErr == nil {
			if ino, ok := getInode(info); ok && ino != 0 {
				if prev, dup := seenInodes[ino]; dup {
					log.Printf("[DEBUG] scanner: %s is a hardlink of %s, skipping", path, prev)
					return nil
				}
				seenInodes[ino] = path
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootDir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// readTagsParallel reads embedded tags and sidecar covers for every
// record. Tag reading is local and side-effect-free, so it fans out
// across workers freely.
func readTagsParallel(ctx context.Context, records []*models.TrackRecord, workers int) error {
	bar := progressbar.Default(int64(len(records)), "reading tags")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for _, rec := range records {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		default:
		}

		wg.Add(1)
		go func(rec *models.TrackRecord) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				bar.Add(1)
			}()

			current, err := tags.Read(rec.Path)
			if err != nil {
				log.Printf("[WARN] scanner: read tags for %s: %v", rec.Path, err)
				rec.Err = err.Error()
				return
			}
			rec.CurrentTags = current
			markEmbedded(rec)

			if external := covers.FindExternal(rec.Path); external != nil {
				rec.ExternalCover = external
			}
		}(rec)
	}

	wg.Wait()
	return nil
}

func markEmbedded(rec *models.TrackRecord) {
	if rec.CurrentTags == nil {
		return
	}
	for _, field := range []string{
		models.FieldArtist, models.FieldTitle, models.FieldAlbum,
		models.FieldAlbumArtist, models.FieldGenre, models.FieldYear,
		models.FieldTrackNumber,
	} {
		if v, _ := rec.EffectiveField(field); v != "" {
			rec.SetField(field, models.ProvenanceEmbedded)
		}
	}
}
