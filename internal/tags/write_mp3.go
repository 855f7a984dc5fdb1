// file: internal/tags/write_mp3.go
// version: 1.1.0
// guid: 0b1c2d3e-4f5a-6b7c-8d9e-0f1a2b3c4d5e

package tags

import (
	"fmt"
	"strconv"

	id3v2 "github.com/bogem/id3v2/v2"
)

// writeMP3Tags writes ID3v2.4 frames in place. Only the fields present
// in req are touched; existing frames for untouched fields survive.
func writeMP3Tags(path string, req *WriteRequest) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if req.Title != "" {
		tag.SetTitle(req.Title)
	}
	if req.Artist != "" {
		tag.SetArtist(req.Artist)
	}
	if req.Album != "" {
		tag.SetAlbum(req.Album)
	}
	if req.Genre != "" {
		tag.SetGenre(req.Genre)
	}
	if req.Year != "" {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, req.Year)
	}
	if req.AlbumArtist != "" {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, req.AlbumArtist)
	}
	if req.TrackNumber > 0 {
		track := strconv.Itoa(req.TrackNumber)
		if req.TotalTracks > 0 {
			track += "/" + strconv.Itoa(req.TotalTracks)
		}
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, track)
	}

	switch req.CoverAction {
	case CoverReplace:
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    req.CoverMIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     req.CoverData,
		})
	case CoverRemove:
		tag.DeleteFrames(tag.CommonID("Attached picture"))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3: %w", err)
	}
	return nil
}
