// file: internal/album/apply.go
// version: 1.2.0
// guid: 7a8b9c0d-1e2f-3a4b-5c6d-7e8f9a0b1c2e

package album

import (
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jdfalk/music-tagger/internal/models"
)

// Apply writes a chosen candidate into the suggestion slot of every
// record in the set. Album is filled on all records; artist only
// where no artist is known from any source. Track numbering follows a
// deterministic contract: files whose filename carries a number keep
// it, the remainder receive the sequential positions that follow,
// ordered by case-insensitive filename.
func Apply(candidate models.AlbumCandidate, records []*models.TrackRecord) {
	for _, rec := range records {
		if rec.SuggestedTags == nil {
			rec.SuggestedTags = &models.SuggestedTags{}
		}
		s := rec.SuggestedTags

		s.Album = candidate.Album
		s.SourceProvider = candidate.SourceProvider
		if s.Confidence < candidate.MatchScore {
			s.Confidence = candidate.MatchScore
		}
		rec.SetField(models.FieldAlbum, models.ProvenanceOnline)

		if artist, _ := rec.EffectiveField(models.FieldArtist); artist == "" && candidate.Artist != "" {
			s.Artist = candidate.Artist
			rec.SetField(models.FieldArtist, models.ProvenanceOnline)
		}

		if year := releaseYear(candidate.ReleaseDate); year > 0 && s.Year == 0 {
			s.Year = year
			rec.SetField(models.FieldYear, models.ProvenanceOnline)
		}
	}

	assignTrackNumbers(records)
	log.Printf("[INFO] album: applied %q by %q to %d tracks", candidate.Album, candidate.Artist, len(records))
}

// assignTrackNumbers gives every record a position. The combined
// ordering puts filename-numbered records first, ascending by their
// number, then the unnumbered ones by case-insensitive filename; each
// unnumbered record takes its 1-based position in that ordering.
func assignTrackNumbers(records []*models.TrackRecord) {
	ordered := make([]*models.TrackRecord, len(records))
	copy(ordered, records)

	sort.SliceStable(ordered, func(i, j int) bool {
		ni, nj := derivedNumber(ordered[i]), derivedNumber(ordered[j])
		switch {
		case ni > 0 && nj > 0:
			return ni < nj
		case ni > 0:
			return true
		case nj > 0:
			return false
		default:
			return strings.ToLower(filepath.Base(ordered[i].Path)) < strings.ToLower(filepath.Base(ordered[j].Path))
		}
	})

	for pos, rec := range ordered {
		if derivedNumber(rec) > 0 {
			continue
		}
		if rec.SuggestedTags == nil {
			rec.SuggestedTags = &models.SuggestedTags{}
		}
		rec.SuggestedTags.TrackNumber = pos + 1
		rec.SetField(models.FieldTrackNumber, models.ProvenanceOnline)
	}
}

func derivedNumber(rec *models.TrackRecord) int {
	if rec.DerivedTags == nil {
		return 0
	}
	return rec.DerivedTags.TrackNumber
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
