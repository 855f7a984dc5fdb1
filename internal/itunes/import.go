// file: internal/itunes/import.go
// version: 1.0.0
// guid: 4d5e6f7a-8b9c-0d1e-2f3a-4b5c6d7e8f9a

package itunes

import (
	"log"
	"strconv"

	"github.com/jdfalk/music-tagger/internal/models"
)

// Apply copies library metadata onto the scanned records it matches
// by path. Library values count as user edits: the user curated them
// by hand, so they outrank every automated candidate. Fields already
// edited in this session are left alone. Returns the number of
// records that matched an entry.
func Apply(lib *Library, records []*models.TrackRecord) int {
	matched := 0
	for _, rec := range records {
		entry := lib.Lookup(rec.Path)
		if entry == nil {
			continue
		}
		matched++
		applyEntry(rec, entry)
	}
	log.Printf("[INFO] itunes: matched %d of %d scanned tracks", matched, len(records))
	return matched
}

func applyEntry(rec *models.TrackRecord, entry *Track) {
	set := func(field, value string) {
		if value == "" || rec.UserEdited(field) {
			return
		}
		rec.SetUserField(field, value)
	}
	set(models.FieldArtist, entry.Artist)
	set(models.FieldTitle, entry.Name)
	set(models.FieldAlbum, entry.Album)
	set(models.FieldAlbumArtist, entry.AlbumArtist)
	set(models.FieldGenre, entry.Genre)
	if entry.Year > 0 {
		set(models.FieldYear, strconv.Itoa(entry.Year))
	}
	if entry.TrackNumber > 0 {
		v := strconv.Itoa(entry.TrackNumber)
		if entry.TrackCount > 0 {
			v += "/" + strconv.Itoa(entry.TrackCount)
		}
		set(models.FieldTrackNumber, v)
	}
}
