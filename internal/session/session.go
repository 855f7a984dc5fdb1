// file: internal/session/session.go
// version: 1.3.0
// guid: 8f9a0b1c-2d3e-4f5a-6b7c-8d9e0f1a2b3d

// Package session is the per-session core state: the scanned track
// set, the pipeline wiring, and the operations the presentation layer
// calls. Nothing here is global and nothing survives the process;
// the only durable output is what commit writes into the files.
package session

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/jdfalk/music-tagger/internal/album"
	"github.com/jdfalk/music-tagger/internal/batch"
	"github.com/jdfalk/music-tagger/internal/database"
	"github.com/jdfalk/music-tagger/internal/itunes"
	"github.com/jdfalk/music-tagger/internal/metrics"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/resolve"
	"github.com/jdfalk/music-tagger/internal/scanner"
	"github.com/jdfalk/music-tagger/internal/tags"
)

// TagWriter writes final field values into one file. Swappable for
// tests; the default is tags.Write.
type TagWriter func(ctx context.Context, path string, req *tags.WriteRequest) error

// CoverFetcher downloads cover art by URL, returning image bytes and
// MIME type. The default is covers.Download.
type CoverFetcher func(ctx context.Context, url string) ([]byte, string, error)

// Session owns one user session's state and wiring.
type Session struct {
	Resolver *resolve.Resolver
	Albums   *album.Resolver
	Runner   *batch.Runner
	Audit    *database.AuditStore // optional

	WriteTags  TagWriter
	FetchCover CoverFetcher

	mu   sync.RWMutex
	scan *scanner.Result
}

// New builds a session around a configured resolver. The batch runner
// is created here so every session gets its own.
func New(resolver *resolve.Resolver, albums *album.Resolver, audit *database.AuditStore) *Session {
	return &Session{
		Resolver:  resolver,
		Albums:    albums,
		Runner:    batch.NewRunner(resolver, 0),
		Audit:     audit,
		WriteTags: tags.Write,
	}
}

// Scan walks rootDir and loads the session's track set, replacing any
// previous scan.
func (s *Session) Scan(ctx context.Context, rootDir string) (*scanner.Result, error) {
	result, err := scanner.ScanDirectory(ctx, rootDir)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.scan = result
	s.mu.Unlock()
	metrics.SetTracks(len(result.Tracks()))

	if s.Audit != nil {
		if auditErr := s.Audit.RecordScan(rootDir, len(result.Tracks())); auditErr != nil {
			log.Printf("[WARN] session: record scan: %v", auditErr)
		}
	}
	return result, nil
}

// Groups returns the current scan grouped by directory, in scan order.
func (s *Session) Groups() []scanner.DirectoryGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return nil
	}
	return s.scan.Groups
}

// Track returns the record for path, or nil.
func (s *Session) Track(path string) *models.TrackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return nil
	}
	return s.scan.Track(path)
}

// Tracks returns every record in scan order.
func (s *Session) Tracks() []*models.TrackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return nil
	}
	return s.scan.Tracks()
}

// records maps paths to their session records, failing on unknown
// paths. Empty paths means every currently selected record.
func (s *Session) records(paths []string) ([]*models.TrackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return nil, fmt.Errorf("no directory scanned")
	}
	if len(paths) == 0 {
		var selected []*models.TrackRecord
		for _, rec := range s.scan.Tracks() {
			if rec.Selected {
				selected = append(selected, rec)
			}
		}
		return selected, nil
	}
	out := make([]*models.TrackRecord, 0, len(paths))
	for _, p := range paths {
		rec := s.scan.Track(p)
		if rec == nil {
			return nil, fmt.Errorf("unknown track %s", p)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Resolve runs the pipeline over the given paths (or the selection)
// as a batch, returning the batch id and its progress events.
func (s *Session) Resolve(ctx context.Context, paths []string, opts resolve.Options) (string, <-chan batch.ProgressEvent, error) {
	records, err := s.records(paths)
	if err != nil {
		return "", nil, err
	}
	id, events := s.Runner.Run(ctx, records, opts)
	return id, events, nil
}

// ResolveOne runs the pipeline synchronously for a single track.
func (s *Session) ResolveOne(ctx context.Context, path string, opts resolve.Options) (*models.TrackRecord, error) {
	records, err := s.records([]string{path})
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Resolve(ctx, records[0], opts); err != nil {
		return nil, err
	}
	return records[0], nil
}

// SetUserField records an explicit user edit on one track. User
// values survive every later pipeline stage.
func (s *Session) SetUserField(path, field, value string) error {
	if !models.KnownField(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	rec := s.Track(path)
	if rec == nil {
		return fmt.Errorf("unknown track %s", path)
	}
	rec.SetUserField(field, value)
	return nil
}

// Select marks tracks as included in (or excluded from) batch
// operations and commits.
func (s *Session) Select(paths []string, selected bool) error {
	records, err := s.records(paths)
	if err != nil {
		return err
	}
	for _, rec := range records {
		rec.Selected = selected
	}
	return nil
}

// ImportITunes overlays a hand-curated iTunes library export onto the
// current scan. Matching entries apply as user edits.
func (s *Session) ImportITunes(libraryPath string) (int, error) {
	lib, err := itunes.Load(libraryPath)
	if err != nil {
		return 0, err
	}
	records := s.Tracks()
	if len(records) == 0 {
		return 0, fmt.Errorf("no directory scanned")
	}
	return itunes.Apply(lib, records), nil
}

// ResolveAlbum returns ranked album candidates for one scanned
// directory. Read-only: no record is modified.
func (s *Session) ResolveAlbum(ctx context.Context, dir string) ([]models.AlbumCandidate, error) {
	if s.Albums == nil {
		return nil, models.ErrProviderUnavailable
	}

	group, err := s.group(dir)
	if err != nil {
		return nil, err
	}

	artist, albumName, summaries := albumQuery(group.Tracks)
	return s.Albums.Resolve(ctx, artist, albumName, summaries)
}

// ApplyAlbumCandidate applies a chosen candidate across a directory's
// records, with the deterministic numbering contract.
func (s *Session) ApplyAlbumCandidate(candidate models.AlbumCandidate, dir string) error {
	group, err := s.group(dir)
	if err != nil {
		return err
	}
	album.Apply(candidate, group.Tracks)
	return nil
}

func (s *Session) group(dir string) (*scanner.DirectoryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scan == nil {
		return nil, fmt.Errorf("no directory scanned")
	}
	for i := range s.scan.Groups {
		if s.scan.Groups[i].Dir == dir {
			return &s.scan.Groups[i], nil
		}
	}
	return nil, fmt.Errorf("unknown directory %s", dir)
}

// albumQuery derives the search text and per-file summaries for a
// directory: the most common known artist and album across the set.
func albumQuery(records []*models.TrackRecord) (artist, albumName string, summaries []album.TrackSummary) {
	artistVotes := map[string]int{}
	albumVotes := map[string]int{}

	for _, rec := range records {
		a, _ := rec.EffectiveField(models.FieldArtist)
		t, _ := rec.EffectiveField(models.FieldTitle)
		al, _ := rec.EffectiveField(models.FieldAlbum)
		if a != "" {
			artistVotes[a]++
		}
		if al != "" {
			albumVotes[al]++
		}
		summaries = append(summaries, album.TrackSummary{
			Filename: rec.Path,
			Artist:   a,
			Title:    t,
		})
	}
	artist = topVote(artistVotes)
	albumName = topVote(albumVotes)
	return artist, albumName, summaries
}

func topVote(votes map[string]int) string {
	best, bestN := "", 0
	for v, n := range votes {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}

// buildWriteRequest resolves each field to its winning value.
func buildWriteRequest(rec *models.TrackRecord, coverAction tags.CoverAction) *tags.WriteRequest {
	req := &tags.WriteRequest{CoverAction: coverAction}
	req.Artist, _ = rec.EffectiveField(models.FieldArtist)
	req.Title, _ = rec.EffectiveField(models.FieldTitle)
	req.Album, _ = rec.EffectiveField(models.FieldAlbum)
	req.AlbumArtist, _ = rec.EffectiveField(models.FieldAlbumArtist)
	req.Genre, _ = rec.EffectiveField(models.FieldGenre)
	req.Year, _ = rec.EffectiveField(models.FieldYear)
	if v, _ := rec.EffectiveField(models.FieldTrackNumber); v != "" {
		if n, total, err := models.ParseTrackNumber(v); err == nil {
			req.TrackNumber = n
			req.TotalTracks = total
		}
	}
	if req.TotalTracks == 0 && rec.CurrentTags != nil {
		req.TotalTracks = rec.CurrentTags.TotalTracks
	}
	return req
}

// CommitOptions control a commit pass.
type CommitOptions struct {
	CoverAction tags.CoverAction
}

// Commit writes resolved values into the given files (or the current
// selection). Writes are independent and atomic per file: a failed
// file reports its error, stays selected for retry, and does not stop
// the rest. Successful files are deselected.
func (s *Session) Commit(ctx context.Context, paths []string, opts CommitOptions) ([]models.CommitResult, error) {
	records, err := s.records(paths)
	if err != nil {
		return nil, err
	}
	writeTags := s.WriteTags
	if writeTags == nil {
		writeTags = tags.Write
	}

	batchID := batch.NewBatchID()
	results := make([]models.CommitResult, 0, len(records))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		req := buildWriteRequest(rec, opts.CoverAction)
		if opts.CoverAction == tags.CoverReplace {
			if err := s.attachCover(ctx, rec, req); err != nil {
				log.Printf("[WARN] session: cover for %s: %v", rec.Path, err)
				req.CoverAction = tags.CoverKeep
			}
		}

		writeErr := writeTags(ctx, rec.Path, req)
		results = append(results, models.CommitResult{Path: rec.Path, Err: writeErr})

		if writeErr != nil {
			rec.Err = writeErr.Error()
			metrics.IncCommit("error")
			log.Printf("[ERROR] session: commit %s: %v", rec.Path, writeErr)
		} else {
			rec.Err = ""
			rec.Selected = false
			metrics.IncCommit("ok")
			applyCommitted(rec, req)
		}
		if s.Audit != nil {
			if auditErr := s.Audit.RecordCommit(batchID, rec.Path, writeErr); auditErr != nil {
				log.Printf("[WARN] session: record commit: %v", auditErr)
			}
		}
	}
	return results, nil
}

// attachCover fills the request's image bytes from the best available
// source: an external sidecar file first, then the suggestion URL.
func (s *Session) attachCover(ctx context.Context, rec *models.TrackRecord, req *tags.WriteRequest) error {
	if rec.ExternalCover != nil && rec.ExternalCover.Path != "" {
		data, mime, err := readCoverFile(rec.ExternalCover.Path)
		if err == nil {
			req.CoverData = data
			req.CoverMIME = mime
			return nil
		}
		log.Printf("[DEBUG] session: sidecar cover %s unreadable: %v", rec.ExternalCover.Path, err)
	}
	if s.FetchCover != nil && rec.SuggestedTags != nil && rec.SuggestedTags.CoverURL != "" {
		data, mime, err := s.FetchCover(ctx, rec.SuggestedTags.CoverURL)
		if err != nil {
			return err
		}
		req.CoverData = data
		req.CoverMIME = mime
		return nil
	}
	return fmt.Errorf("no cover available for %s", rec.Path)
}

// applyCommitted folds the written values back into the embedded slot
// so the session reflects what is now in the file.
func applyCommitted(rec *models.TrackRecord, req *tags.WriteRequest) {
	if rec.CurrentTags == nil {
		rec.CurrentTags = &models.Tags{}
	}
	cur := rec.CurrentTags
	if req.Artist != "" {
		cur.Artist = req.Artist
	}
	if req.Title != "" {
		cur.Title = req.Title
	}
	if req.Album != "" {
		cur.Album = req.Album
	}
	if req.AlbumArtist != "" {
		cur.AlbumArtist = req.AlbumArtist
	}
	if req.Genre != "" {
		cur.Genres = []string{req.Genre}
	}
	if req.Year != "" {
		if y, err := strconv.Atoi(req.Year); err == nil {
			cur.Year = y
		}
	}
	if req.TrackNumber > 0 {
		cur.TrackNumber = req.TrackNumber
	}
	for field := range rec.Provenance {
		rec.Provenance[field] = models.ProvenanceEmbedded
	}
	// Committed user edits are embedded values now.
	for field := range rec.UserEdits {
		delete(rec.UserEdits, field)
	}
}

// readCoverFile loads a sidecar image and sniffs its MIME type.
func readCoverFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, http.DetectContentType(data), nil
}
