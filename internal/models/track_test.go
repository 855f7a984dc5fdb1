// file: internal/models/track_test.go
// version: 1.2.0
// guid: 9e0f1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4b

package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestProvenancePriority(t *testing.T) {
	ordered := []Provenance{
		ProvenanceUser,
		ProvenanceEmbedded,
		ProvenanceFingerprint,
		ProvenanceOnline,
		ProvenanceFilename,
		ProvenancePath,
	}
	for i := 1; i < len(ordered); i++ {
		if ProvenancePriority(ordered[i-1]) >= ProvenancePriority(ordered[i]) {
			t.Errorf("expected %s to outrank %s", ordered[i-1], ordered[i])
		}
	}
	if ProvenancePriority("bogus") <= ProvenancePriority(ProvenancePath) {
		t.Error("unknown provenance should rank last")
	}
}

func TestProvenanceOverrides(t *testing.T) {
	tests := []struct {
		a, b Provenance
		want bool
	}{
		{ProvenanceUser, ProvenanceEmbedded, true},
		{ProvenanceEmbedded, ProvenanceUser, false},
		{ProvenanceFingerprint, ProvenanceOnline, true},
		{ProvenanceOnline, ProvenanceFingerprint, false},
		{ProvenanceFilename, ProvenancePath, true},
		{ProvenanceOnline, ProvenanceOnline, false},
		{ProvenancePath, ProvenanceUser, false},
	}
	for _, tt := range tests {
		if got := tt.a.Overrides(tt.b); got != tt.want {
			t.Errorf("%s.Overrides(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSetUserFieldAlwaysWins(t *testing.T) {
	r := NewTrackRecord(0, "/music/a.mp3")
	r.CurrentTags = &Tags{Artist: "Embedded Artist", Title: "Song"}
	r.SetUserField(FieldArtist, "Corrected Artist")

	if ok := r.SetField(FieldArtist, ProvenanceEmbedded); ok {
		t.Error("embedded source must not displace a user edit")
	}
	if ok := r.SetField(FieldArtist, ProvenanceFingerprint); ok {
		t.Error("fingerprint source must not displace a user edit")
	}

	v, p := r.EffectiveField(FieldArtist)
	if v != "Corrected Artist" || p != ProvenanceUser {
		t.Errorf("EffectiveField(artist) = %q/%s, want user edit", v, p)
	}
}

func TestSetFieldPrecedence(t *testing.T) {
	r := NewTrackRecord(0, "/music/a.mp3")
	if !r.SetField(FieldAlbum, ProvenancePath) {
		t.Fatal("first attribution should always be accepted")
	}
	if !r.SetField(FieldAlbum, ProvenanceOnline) {
		t.Error("online should override path-derived")
	}
	if r.SetField(FieldAlbum, ProvenanceFilename) {
		t.Error("filename-derived must not override online")
	}
	if r.Provenance[FieldAlbum] != ProvenanceOnline {
		t.Errorf("provenance = %s, want %s", r.Provenance[FieldAlbum], ProvenanceOnline)
	}
}

func TestEffectiveFieldFallbackOrder(t *testing.T) {
	r := NewTrackRecord(3, "/music/07 - Intro.mp3")
	r.DerivedTags = &DerivedTags{Title: "Intro", TrackNumber: 7, Confidence: 0.6}

	v, p := r.EffectiveField(FieldTitle)
	if v != "Intro" || p != ProvenanceFilename {
		t.Errorf("derived-only record: got %q/%s", v, p)
	}

	r.SuggestedTags = &SuggestedTags{Title: "Introduction", SourceProvider: "musicbrainz"}
	v, p = r.EffectiveField(FieldTitle)
	if v != "Introduction" || p != ProvenanceOnline {
		t.Errorf("suggestion should outrank derived: got %q/%s", v, p)
	}

	r.CurrentTags = &Tags{Title: "Intro (Remaster)"}
	v, p = r.EffectiveField(FieldTitle)
	if v != "Intro (Remaster)" || p != ProvenanceEmbedded {
		t.Errorf("embedded should outrank suggestion: got %q/%s", v, p)
	}
}

func TestEffectiveFieldEmpty(t *testing.T) {
	r := NewTrackRecord(0, "/music/x.flac")
	v, p := r.EffectiveField(FieldArtist)
	if v != "" || p != "" {
		t.Errorf("empty record returned %q/%s", v, p)
	}
}

func TestKnownField(t *testing.T) {
	for _, f := range []string{FieldArtist, FieldTitle, FieldAlbum, FieldAlbumArtist, FieldGenre, FieldYear, FieldTrackNumber, FieldCover} {
		if !KnownField(f) {
			t.Errorf("KnownField(%q) = false", f)
		}
	}
	if KnownField("narrator") {
		t.Error("narrator is not a track field")
	}
}

func TestTagsHelpers(t *testing.T) {
	var nilTags *Tags
	if nilTags.PrimaryGenre() != "" {
		t.Error("nil tags should report empty genre")
	}
	tags := &Tags{Genres: []string{"Jazz", "Bop"}}
	if g := tags.PrimaryGenre(); g != "Jazz" {
		t.Errorf("PrimaryGenre = %q, want Jazz", g)
	}
	if tags.HasArtistAndTitle() {
		t.Error("missing artist/title should report false")
	}
	tags.Artist, tags.Title = "Miles Davis", "So What"
	if !tags.HasArtistAndTitle() {
		t.Error("artist+title present should report true")
	}
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("acoustid lookup: %w", ErrRateLimited)
	if !IsRetryable(wrapped) {
		t.Error("wrapped rate-limit should be retryable")
	}
	if IsRetryable(ErrNoMatch) {
		t.Error("no-match is not retryable")
	}
	if !IsNoResult(ErrAmbiguousCandidate) {
		t.Error("ambiguous candidate counts as no result")
	}
	if IsNoResult(ErrWriteError) {
		t.Error("write error is a real failure")
	}

	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrProviderUnavailable, "provider_unavailable"},
		{fmt.Errorf("discogs: %w", ErrRateLimited), "rate_limited"},
		{ErrNoMatch, "no_match"},
		{ErrAmbiguousCandidate, "ambiguous_candidate"},
		{ErrUnreadableFile, "unreadable_file"},
		{ErrWriteError, "write_error"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorClass(tt.err); got != tt.want {
			t.Errorf("ErrorClass(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCommitResultOk(t *testing.T) {
	if !(CommitResult{Path: "/a"}).Ok() {
		t.Error("nil error should be ok")
	}
	if (CommitResult{Path: "/a", Err: ErrWriteError}).Ok() {
		t.Error("write error should not be ok")
	}
}
