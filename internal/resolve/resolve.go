// file: internal/resolve/resolve.go
// version: 1.4.0
// guid: 9c0d1e2f-3a4b-5c6d-7e8f-9a0b1c2d3e4a

// Package resolve runs the per-track identification pipeline. Stages
// execute in a fixed order: directory context, filename heuristics,
// online text search, audio fingerprinting, cover completion. Every
// stage is optional at runtime and a failing stage yields no
// candidate rather than aborting the track.
package resolve

import (
	"context"
	"errors"
	"log"

	"github.com/jdfalk/music-tagger/internal/covers"
	"github.com/jdfalk/music-tagger/internal/enrich"
	"github.com/jdfalk/music-tagger/internal/heuristics"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/tags"
)

// TextSearcher is the online text-search stage contract, satisfied by
// enrich.Chain and the individual enrichment clients.
type TextSearcher interface {
	SearchTrack(ctx context.Context, artist, title string) (*models.RecognitionResult, error)
}

// Recognizer is the audio fingerprint stage contract, satisfied by
// fingerprint.Service.
type Recognizer interface {
	Enabled() bool
	Identify(ctx context.Context, filePath string) (*models.RecognitionResult, error)
}

// TagFetcher supplies community tags for the genre and mood
// classifiers, satisfied by enrich.LastFMClient.
type TagFetcher interface {
	TopTags(ctx context.Context, artist, title string) ([]string, error)
}

// Options control a single resolve run.
type Options struct {
	// SkipOnline disables the network stages entirely; only local
	// derivation and cover discovery run.
	SkipOnline bool
	// ForceFingerprint runs the fingerprint stage even when text
	// search already produced an accepted candidate.
	ForceFingerprint bool
}

// Resolver holds the stage implementations for one session. Any of
// the network-facing fields may be nil, which skips that stage.
type Resolver struct {
	Search     TextSearcher
	Recognizer Recognizer
	TagFetcher TagFetcher
}

// Resolve runs the pipeline against one record, filling its derived
// and suggested slots in place. The embedded tag slot is never
// modified. The only returned errors are context cancellation;
// everything else degrades to an unresolved field.
func (r *Resolver) Resolve(ctx context.Context, rec *models.TrackRecord, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.readTags(rec)
	r.derive(rec)

	searched := false
	var searchErr error
	if !opts.SkipOnline && r.Search != nil {
		searched, searchErr = r.textSearch(ctx, rec)
		if isCancel(searchErr) {
			return searchErr
		}
	}

	// The fingerprint stage runs when text search could not run for
	// lack of text, when it ran and missed, or when forced.
	needFingerprint := opts.ForceFingerprint || !searched || searchErr != nil
	if !opts.SkipOnline && needFingerprint && r.Recognizer != nil && r.Recognizer.Enabled() {
		if err := r.fingerprint(ctx, rec); isCancel(err) {
			return err
		}
	}

	if !opts.SkipOnline {
		if err := r.classify(ctx, rec); isCancel(err) {
			return err
		}
	}

	r.completeCover(rec)
	return nil
}

// readTags loads the embedded tag slot once per record. Unreadable
// files keep a nil slot and carry the error for display.
func (r *Resolver) readTags(rec *models.TrackRecord) {
	if rec.CurrentTags != nil {
		return
	}
	current, err := tags.Read(rec.Path)
	if err != nil {
		log.Printf("[WARN] resolve: read tags for %s: %v", rec.Path, err)
		rec.Err = err.Error()
		return
	}
	rec.CurrentTags = current
	if current == nil {
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

// derive fills the derivation slot from filename and directory
// context, but only when the embedded tags lack artist or title.
func (r *Resolver) derive(rec *models.TrackRecord) {
	if rec.CurrentTags.HasArtistAndTitle() {
		return
	}

	name, dir := heuristics.Analyze(rec.Path)
	if name.Empty() && dir.Empty() {
		return
	}

	rec.DerivedTags = &models.DerivedTags{
		Artist:      name.Artist,
		Title:       name.Title,
		Album:       name.Album,
		TrackNumber: name.TrackNumber,
		Confidence:  name.Confidence,
	}

	if name.Title != "" {
		rec.SetField(models.FieldTitle, models.ProvenanceFilename)
	}
	if name.TrackNumber > 0 {
		rec.SetField(models.FieldTrackNumber, models.ProvenanceFilename)
	}
	if name.Artist != "" {
		src := models.ProvenanceFilename
		if dir.Artist == name.Artist {
			src = models.ProvenancePath
		}
		rec.SetField(models.FieldArtist, src)
	}
	if name.Album != "" {
		rec.SetField(models.FieldAlbum, models.ProvenancePath)
	}
}

// textSearch runs the online text-search stage. The bool reports
// whether the stage ran at all: without a title there is nothing to
// search for.
func (r *Resolver) textSearch(ctx context.Context, rec *models.TrackRecord) (bool, error) {
	artist, _ := rec.EffectiveField(models.FieldArtist)
	title, _ := rec.EffectiveField(models.FieldTitle)
	if title == "" {
		log.Printf("[DEBUG] resolve: no text to search for %s", rec.Path)
		return false, nil
	}

	res, err := r.Search.SearchTrack(ctx, artist, title)
	if err != nil {
		if !models.IsNoResult(err) && !isCancel(err) {
			log.Printf("[WARN] resolve: text search for %s: %v", rec.Path, err)
		}
		return true, err
	}
	mergeSuggestion(rec, res, models.ProvenanceOnline)
	return true, nil
}

// fingerprint runs acoustic recognition and, on acceptance, a second
// text-search pass keyed by the recognized artist and title so the
// remaining fields can fill in.
func (r *Resolver) fingerprint(ctx context.Context, rec *models.TrackRecord) error {
	res, err := r.Recognizer.Identify(ctx, rec.Path)
	if err != nil {
		if !models.IsNoResult(err) && !isCancel(err) {
			log.Printf("[WARN] resolve: fingerprint for %s: %v", rec.Path, err)
		}
		return err
	}
	mergeSuggestion(rec, res, models.ProvenanceFingerprint)

	if r.Search != nil && res.Artist != "" && res.Title != "" {
		second, searchErr := r.Search.SearchTrack(ctx, res.Artist, res.Title)
		if searchErr != nil {
			return nil
		}
		mergeSuggestion(rec, second, models.ProvenanceOnline)
	}
	return nil
}

// classify derives era and mood for records that picked up a
// suggestion with enough text to classify.
func (r *Resolver) classify(ctx context.Context, rec *models.TrackRecord) error {
	s := rec.SuggestedTags
	if s == nil {
		return nil
	}
	if s.Year > 0 && s.Era == "" {
		s.Era = enrich.EraForYear(s.Year)
	}
	if r.TagFetcher == nil || s.Artist == "" || s.Title == "" {
		return nil
	}
	topTags, err := r.TagFetcher.TopTags(ctx, s.Artist, s.Title)
	if err != nil {
		if isCancel(err) {
			return err
		}
		log.Printf("[DEBUG] resolve: top tags for %s: %v", rec.Path, err)
		return nil
	}
	if len(s.Genres) == 0 && len(topTags) > 0 {
		s.Genres = topTags[:min(3, len(topTags))]
		rec.SetField(models.FieldGenre, models.ProvenanceOnline)
	}
	if s.Mood == "" {
		s.Mood = enrich.MoodFromTags(topTags)
	}
	return nil
}

// completeCover discovers sidecar cover files and records the merged
// embedded/external location.
func (r *Resolver) completeCover(rec *models.TrackRecord) {
	external := covers.FindExternal(rec.Path)
	if external != nil {
		rec.ExternalCover = external
		rec.SetField(models.FieldCover, models.ProvenanceFilename)
	}
}

// mergeSuggestion folds a recognition result into the suggestion
// slot. Fields land when they are empty or when the new source
// outranks the current owner of the field; embedded values are never
// displaced.
func mergeSuggestion(rec *models.TrackRecord, res *models.RecognitionResult, src models.Provenance) {
	if rec.SuggestedTags == nil {
		rec.SuggestedTags = &models.SuggestedTags{}
	}
	s := rec.SuggestedTags

	set := func(field string, dst *string, val string) {
		if val == "" {
			return
		}
		if *dst == "" {
			*dst = val
			rec.SetField(field, src)
			return
		}
		if rec.SetField(field, src) {
			*dst = val
		}
	}
	set(models.FieldArtist, &s.Artist, res.Artist)
	set(models.FieldTitle, &s.Title, res.Title)
	set(models.FieldAlbum, &s.Album, res.Album)
	set(models.FieldCover, &s.CoverURL, res.CoverURL)

	if res.Confidence > s.Confidence {
		s.Confidence = res.Confidence
		s.SourceProvider = res.SourceProvider
	}
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
