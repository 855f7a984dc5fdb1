// file: internal/models/track.go
// version: 1.3.0
// guid: 2a9b4c1d-8e3f-4a6b-9c0d-1e2f3a4b5c6d

package models

import "strconv"

// Provenance identifies which source last determined a field's value.
type Provenance string

const (
	ProvenanceUser        Provenance = "user-edited"
	ProvenanceEmbedded    Provenance = "embedded"
	ProvenanceFingerprint Provenance = "fingerprint-recognized"
	ProvenanceOnline      Provenance = "online-enriched"
	ProvenanceFilename    Provenance = "filename-derived"
	ProvenancePath        Provenance = "path-derived"
)

// provenanceRank orders provenances from strongest to weakest.
// Lower rank wins during resolution.
var provenanceRank = map[Provenance]int{
	ProvenanceUser:        0,
	ProvenanceEmbedded:    1,
	ProvenanceFingerprint: 2,
	ProvenanceOnline:      3,
	ProvenanceFilename:    4,
	ProvenancePath:        5,
}

// ProvenancePriority returns the precedence rank of p. Unknown provenances
// rank after every known one so they never displace a real source.
func ProvenancePriority(p Provenance) int {
	if r, ok := provenanceRank[p]; ok {
		return r
	}
	return len(provenanceRank)
}

// Overrides reports whether a value from provenance a may replace a value
// already attributed to provenance b.
func (p Provenance) Overrides(other Provenance) bool {
	return ProvenancePriority(p) < ProvenancePriority(other)
}

// Canonical field names used in Provenance maps and user edits.
const (
	FieldArtist      = "artist"
	FieldTitle       = "title"
	FieldAlbum       = "album"
	FieldAlbumArtist = "albumartist"
	FieldGenre       = "genre"
	FieldYear        = "year"
	FieldTrackNumber = "tracknumber"
	FieldCover       = "cover"
)

// KnownField reports whether name is an editable metadata field.
func KnownField(name string) bool {
	switch name {
	case FieldArtist, FieldTitle, FieldAlbum, FieldAlbumArtist,
		FieldGenre, FieldYear, FieldTrackNumber, FieldCover:
		return true
	}
	return false
}

// Tags holds metadata read from a file container. Read-only after scan;
// suggestions from recognition and enrichment never mutate it.
type Tags struct {
	Artist      string     `json:"artist,omitempty"`
	Title       string     `json:"title,omitempty"`
	Album       string     `json:"album,omitempty"`
	AlbumArtist string     `json:"album_artist,omitempty"`
	Genres      []string   `json:"genres,omitempty"` // primary genre first
	Year        int        `json:"year,omitempty"`
	TrackNumber int        `json:"track_number,omitempty"` // 0 = unset
	TotalTracks int        `json:"total_tracks,omitempty"`
	Cover       *CoverInfo `json:"cover,omitempty"`
}

// PrimaryGenre returns the first genre or "".
func (t *Tags) PrimaryGenre() string {
	if t == nil || len(t.Genres) == 0 {
		return ""
	}
	return t.Genres[0]
}

// HasArtistAndTitle reports whether both core text fields are present.
func (t *Tags) HasArtistAndTitle() bool {
	return t != nil && t.Artist != "" && t.Title != ""
}

// DerivedTags holds candidates parsed from the filename and directory
// context. Populated only when embedded tags are missing or incomplete.
type DerivedTags struct {
	Artist      string  `json:"artist,omitempty"`
	Title       string  `json:"title,omitempty"`
	Album       string  `json:"album,omitempty"`
	TrackNumber int     `json:"track_number,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// SuggestedTags holds candidates produced by recognition or enrichment.
// A separate slot from Tags so the user can compare both and choose.
type SuggestedTags struct {
	Artist         string   `json:"artist,omitempty"`
	Title          string   `json:"title,omitempty"`
	Album          string   `json:"album,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Year           int      `json:"year,omitempty"`
	TrackNumber    int      `json:"track_number,omitempty"` // set by album application only
	Era            string   `json:"era,omitempty"`
	Mood           string   `json:"mood,omitempty"`
	SimilarArtists []string `json:"similar_artists,omitempty"`
	CoverURL       string   `json:"cover_url,omitempty"`
	Confidence     float64  `json:"confidence"`
	SourceProvider string   `json:"source_provider,omitempty"`
}

// CoverLocation describes where cover art for a track lives.
type CoverLocation string

const (
	CoverEmbedded CoverLocation = "embedded"
	CoverExternal CoverLocation = "external"
	CoverBoth     CoverLocation = "both"
	CoverNone     CoverLocation = "none"
)

// CoverInfo describes a cover image attached to or near a track.
type CoverInfo struct {
	Location  CoverLocation `json:"location"`
	PixelSize int           `json:"pixel_size,omitempty"` // square resolution, 0 = unknown
	Format    string        `json:"format,omitempty"`     // "jpeg", "png"
	Path      string        `json:"path,omitempty"`       // external file path if any
}

// AudioProperties holds stream-level attributes probed from the file.
type AudioProperties struct {
	DurationSec int `json:"duration_sec,omitempty"`
	BitrateKbps int `json:"bitrate_kbps,omitempty"`
	SampleRate  int `json:"sample_rate_hz,omitempty"`
	Channels    int `json:"channels,omitempty"`
}

// TrackRecord is the unit of work: one audio file and everything the
// pipeline knows about it. Records live only for the session; nothing is
// persisted except what the user commits back into the file.
type TrackRecord struct {
	Index int    `json:"index"` // position in scan order
	Path  string `json:"path"`  // unique identifier

	CurrentTags   *Tags            `json:"current_tags,omitempty"`
	DerivedTags   *DerivedTags     `json:"derived_tags,omitempty"`
	SuggestedTags *SuggestedTags   `json:"suggested_tags,omitempty"`
	ExternalCover *CoverInfo       `json:"external_cover,omitempty"`
	Properties    *AudioProperties `json:"properties,omitempty"`

	// Provenance maps field name to the source that owns its current value.
	Provenance map[string]Provenance `json:"provenance,omitempty"`

	// UserEdits holds explicit user values, immutable to every pipeline stage.
	UserEdits map[string]string `json:"user_edits,omitempty"`

	Selected bool   `json:"selected"`
	Err      string `json:"error,omitempty"`
}

// NewTrackRecord creates a record for path at scan position index.
func NewTrackRecord(index int, path string) *TrackRecord {
	return &TrackRecord{
		Index:      index,
		Path:       path,
		Provenance: make(map[string]Provenance),
		UserEdits:  make(map[string]string),
	}
}

// SetUserField records an explicit user edit for field. User values
// always win and are never replaced by later automated stages.
func (r *TrackRecord) SetUserField(field, value string) {
	if r.UserEdits == nil {
		r.UserEdits = make(map[string]string)
	}
	if r.Provenance == nil {
		r.Provenance = make(map[string]Provenance)
	}
	r.UserEdits[field] = value
	r.Provenance[field] = ProvenanceUser
}

// UserEdited reports whether field carries an explicit user value.
func (r *TrackRecord) UserEdited(field string) bool {
	_, ok := r.UserEdits[field]
	return ok
}

// SetField attributes field to src only when src outranks the current
// owner. Returns true when the attribution was accepted.
func (r *TrackRecord) SetField(field string, src Provenance) bool {
	if r.Provenance == nil {
		r.Provenance = make(map[string]Provenance)
	}
	cur, ok := r.Provenance[field]
	if ok && !src.Overrides(cur) {
		return false
	}
	r.Provenance[field] = src
	return true
}

// EffectiveField returns the winning value for field with its provenance,
// resolved across user edits, embedded tags, suggestions and derivations.
func (r *TrackRecord) EffectiveField(field string) (string, Provenance) {
	if v, ok := r.UserEdits[field]; ok {
		return v, ProvenanceUser
	}
	if v := r.embeddedField(field); v != "" {
		return v, ProvenanceEmbedded
	}
	if r.SuggestedTags != nil {
		if v := r.suggestedField(field); v != "" {
			p := ProvenanceOnline
			if r.Provenance[field] == ProvenanceFingerprint {
				p = ProvenanceFingerprint
			}
			return v, p
		}
	}
	if r.DerivedTags != nil {
		if v := r.derivedField(field); v != "" {
			p := ProvenanceFilename
			if r.Provenance[field] == ProvenancePath {
				p = ProvenancePath
			}
			return v, p
		}
	}
	return "", ""
}

func (r *TrackRecord) embeddedField(field string) string {
	if r.CurrentTags == nil {
		return ""
	}
	switch field {
	case FieldArtist:
		return r.CurrentTags.Artist
	case FieldTitle:
		return r.CurrentTags.Title
	case FieldAlbum:
		return r.CurrentTags.Album
	case FieldAlbumArtist:
		return r.CurrentTags.AlbumArtist
	case FieldGenre:
		return r.CurrentTags.PrimaryGenre()
	case FieldYear:
		return itoaNonZero(r.CurrentTags.Year)
	case FieldTrackNumber:
		return itoaNonZero(r.CurrentTags.TrackNumber)
	}
	return ""
}

func (r *TrackRecord) suggestedField(field string) string {
	s := r.SuggestedTags
	switch field {
	case FieldArtist:
		return s.Artist
	case FieldTitle:
		return s.Title
	case FieldAlbum:
		return s.Album
	case FieldGenre:
		if len(s.Genres) > 0 {
			return s.Genres[0]
		}
	case FieldYear:
		return itoaNonZero(s.Year)
	case FieldTrackNumber:
		return itoaNonZero(s.TrackNumber)
	case FieldCover:
		return s.CoverURL
	}
	return ""
}

func (r *TrackRecord) derivedField(field string) string {
	d := r.DerivedTags
	switch field {
	case FieldArtist:
		return d.Artist
	case FieldTitle:
		return d.Title
	case FieldAlbum:
		return d.Album
	case FieldTrackNumber:
		return itoaNonZero(d.TrackNumber)
	}
	return ""
}

func itoaNonZero(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// RecognitionResult is one candidate identification from a fingerprint
// provider.
type RecognitionResult struct {
	Artist         string            `json:"artist"`
	Title          string            `json:"title"`
	Album          string            `json:"album,omitempty"`
	Confidence     float64           `json:"confidence"`
	SourceProvider string            `json:"source_provider"`
	CoverURL       string            `json:"cover_url,omitempty"`
	ExternalIDs    map[string]string `json:"external_ids,omitempty"`
}

// AlbumTrack is one track listing inside an AlbumCandidate.
type AlbumTrack struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
}

// AlbumCandidate is a proposed whole-album identification awaiting user
// confirmation. Candidates exist only for the duration of that step.
type AlbumCandidate struct {
	Album          string       `json:"album"`
	Artist         string       `json:"artist"`
	ReleaseDate    string       `json:"release_date,omitempty"`
	TrackCount     int          `json:"track_count"`
	Country        string       `json:"country,omitempty"`
	SourceProvider string       `json:"source_provider"`
	MatchScore     float64      `json:"match_score"`
	ExternalID     string       `json:"external_id,omitempty"`
	Tracks         []AlbumTrack `json:"tracks,omitempty"`
}

// CommitResult reports the outcome of writing one file.
type CommitResult struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Ok reports whether the write succeeded.
func (c CommitResult) Ok() bool { return c.Err == nil }
