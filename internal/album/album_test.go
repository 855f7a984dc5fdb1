// file: internal/album/album_test.go
// version: 1.1.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3f

package album

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jdfalk/music-tagger/internal/models"
)

type fakeSource struct {
	name       string
	candidates []models.AlbumCandidate
	listings   map[string][]models.AlbumTrack
	searchErr  error
	calls      int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) SearchReleases(ctx context.Context, artist, album string) ([]models.AlbumCandidate, error) {
	f.calls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]models.AlbumCandidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

func (f *fakeSource) ReleaseTracks(ctx context.Context, releaseID string) ([]models.AlbumTrack, error) {
	return f.listings[releaseID], nil
}

func kindOfBlueTracks() []TrackSummary {
	return []TrackSummary{
		{Filename: "01 - So What.flac", Title: "So What"},
		{Filename: "02 - Freddie Freeloader.flac", Title: "Freddie Freeloader"},
		{Filename: "03 - Blue in Green.flac", Title: "Blue in Green"},
	}
}

func kindOfBlueListing() []models.AlbumTrack {
	return []models.AlbumTrack{
		{Position: 1, Title: "So What"},
		{Position: 2, Title: "Freddie Freeloader"},
		{Position: 3, Title: "Blue in Green"},
		{Position: 4, Title: "All Blues"},
		{Position: 5, Title: "Flamenco Sketches"},
	}
}

func TestResolveRanksByScore(t *testing.T) {
	primary := &fakeSource{
		name: "primary",
		candidates: []models.AlbumCandidate{
			{Album: "Kind of Blue", Artist: "Miles Davis", TrackCount: 5, ExternalID: "good", SourceProvider: "primary"},
			{Album: "Unrelated", Artist: "Someone", TrackCount: 12, ExternalID: "bad", SourceProvider: "primary"},
		},
		listings: map[string][]models.AlbumTrack{
			"good": kindOfBlueListing(),
			"bad":  {{Position: 1, Title: "Nothing Similar Here"}},
		},
	}

	cands, err := NewResolver(primary, nil).Resolve(context.Background(), "Miles Davis", "Kind of Blue", kindOfBlueTracks())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cands[0].ExternalID != "good" {
		t.Errorf("best candidate = %q, want \"good\"", cands[0].ExternalID)
	}
	// All three titles match exactly and the count is within slack.
	if cands[0].MatchScore != 1.0 {
		t.Errorf("best score = %v, want 1.0", cands[0].MatchScore)
	}
	if cands[len(cands)-1].MatchScore > cands[0].MatchScore {
		t.Error("candidates not sorted descending")
	}
}

func TestResolveFallbackOnFewCandidates(t *testing.T) {
	primary := &fakeSource{
		name: "primary",
		candidates: []models.AlbumCandidate{
			{Album: "Kind of Blue", TrackCount: 5, ExternalID: "only", SourceProvider: "primary"},
		},
		listings: map[string][]models.AlbumTrack{"only": kindOfBlueListing()},
	}
	fallback := &fakeSource{
		name: "fallback",
		candidates: []models.AlbumCandidate{
			{Album: "Kind of Blue", TrackCount: 5, ExternalID: "fb", SourceProvider: "fallback"},
		},
		listings: map[string][]models.AlbumTrack{"fb": kindOfBlueListing()},
	}

	cands, err := NewResolver(primary, fallback).Resolve(context.Background(), "", "Kind of Blue", kindOfBlueTracks())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if fallback.calls != 1 {
		t.Error("fallback should be consulted when primary yields fewer than two candidates")
	}
	if len(cands) != 2 {
		t.Errorf("got %d candidates, want 2", len(cands))
	}
}

func TestResolveNoFallbackWhenPrimaryStrong(t *testing.T) {
	strong := []models.AlbumCandidate{
		{Album: "Kind of Blue", TrackCount: 5, ExternalID: "a", SourceProvider: "primary"},
		{Album: "Kind of Blue (Legacy Edition)", TrackCount: 5, ExternalID: "b", SourceProvider: "primary"},
	}
	primary := &fakeSource{
		name:       "primary",
		candidates: strong,
		listings: map[string][]models.AlbumTrack{
			"a": kindOfBlueListing(),
			"b": kindOfBlueListing(),
		},
	}
	fallback := &fakeSource{name: "fallback"}

	if _, err := NewResolver(primary, fallback).Resolve(context.Background(), "", "Kind of Blue", kindOfBlueTracks()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not run when primary candidates are strong")
	}
}

func TestResolveNoMatch(t *testing.T) {
	primary := &fakeSource{name: "primary", searchErr: models.ErrNoMatch}
	_, err := NewResolver(primary, nil).Resolve(context.Background(), "a", "b", nil)
	if !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveCapsCandidates(t *testing.T) {
	var many []models.AlbumCandidate
	listings := map[string][]models.AlbumTrack{}
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		many = append(many, models.AlbumCandidate{Album: "Kind of Blue", TrackCount: 5, ExternalID: id})
		listings[id] = kindOfBlueListing()
	}
	primary := &fakeSource{name: "primary", candidates: many, listings: listings}

	cands, err := NewResolver(primary, nil).Resolve(context.Background(), "", "Kind of Blue", kindOfBlueTracks())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(cands) != maxCandidates {
		t.Errorf("got %d candidates, want %d", len(cands), maxCandidates)
	}
}

func applyFixture() ([]*models.TrackRecord, models.AlbumCandidate) {
	records := []*models.TrackRecord{
		models.NewTrackRecord(0, "/music/zebra song.mp3"),
		models.NewTrackRecord(1, "/music/03 - Blue in Green.mp3"),
		models.NewTrackRecord(2, "/music/Alpha Tune.mp3"),
		models.NewTrackRecord(3, "/music/01 - So What.mp3"),
	}
	records[1].DerivedTags = &models.DerivedTags{Title: "Blue in Green", TrackNumber: 3}
	records[3].DerivedTags = &models.DerivedTags{Title: "So What", TrackNumber: 1}

	candidate := models.AlbumCandidate{
		Album:          "Kind of Blue",
		Artist:         "Miles Davis",
		ReleaseDate:    "1959-08-17",
		SourceProvider: "musicbrainz",
		MatchScore:     0.9,
	}
	return records, candidate
}

func TestApplyFillsAlbumAndArtist(t *testing.T) {
	records, candidate := applyFixture()
	records[0].SetUserField(models.FieldArtist, "Someone Else")

	Apply(candidate, records)

	for i, rec := range records {
		album, _ := rec.EffectiveField(models.FieldAlbum)
		if album != "Kind of Blue" {
			t.Errorf("record %d album = %q, want Kind of Blue", i, album)
		}
	}

	// User-edited artist survives application untouched.
	artist, prov := records[0].EffectiveField(models.FieldArtist)
	if artist != "Someone Else" || prov != models.ProvenanceUser {
		t.Errorf("user artist overwritten: %q (%s)", artist, prov)
	}
	artist, _ = records[2].EffectiveField(models.FieldArtist)
	if artist != "Miles Davis" {
		t.Errorf("empty artist not filled, got %q", artist)
	}

	year, _ := records[1].EffectiveField(models.FieldYear)
	if year != "1959" {
		t.Errorf("year = %q, want 1959", year)
	}
}

func TestApplyTrackNumberContract(t *testing.T) {
	records, candidate := applyFixture()
	Apply(candidate, records)

	// Numbered files keep their filename-derived numbers. The two
	// unnumbered ones take their 1-based positions in the combined
	// ordering, in case-insensitive filename order: "Alpha Tune"
	// lands on position three, "zebra song" on four.
	wantNumbers := map[string]string{
		"/music/01 - So What.mp3":       "1",
		"/music/03 - Blue in Green.mp3": "3",
		"/music/Alpha Tune.mp3":         "3",
		"/music/zebra song.mp3":         "4",
	}

	for _, rec := range records {
		got, _ := rec.EffectiveField(models.FieldTrackNumber)
		if got != wantNumbers[rec.Path] {
			t.Errorf("%s track number = %q, want %q", rec.Path, got, wantNumbers[rec.Path])
		}
	}
}

func TestApplyDeterministic(t *testing.T) {
	first, candidate := applyFixture()
	Apply(candidate, first)

	// Same file set presented in a different order must produce the
	// same assignments.
	second, _ := applyFixture()
	second[0], second[3] = second[3], second[0]
	second[1], second[2] = second[2], second[1]
	Apply(candidate, second)

	numbers := func(records []*models.TrackRecord) map[string]string {
		out := map[string]string{}
		for _, rec := range records {
			n, _ := rec.EffectiveField(models.FieldTrackNumber)
			out[rec.Path] = n
		}
		return out
	}
	if !reflect.DeepEqual(numbers(first), numbers(second)) {
		t.Errorf("assignments differ:\n%v\n%v", numbers(first), numbers(second))
	}
}
