// file: internal/tags/write_flac.go
// version: 1.1.0
// guid: 1c2d3e4f-5a6b-7c8d-9e0f-1a2b3c4d5e6f

package tags

import (
	"fmt"
	"strconv"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// writeFLACTags rewrites the Vorbis comment block and, when requested,
// the front-cover picture block of a FLAC file.
func writeFLACTags(path string, req *WriteRequest) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	// Carry over existing comments so untouched fields survive the
	// block replacement.
	existing := map[string][]string{}
	cmtIdx := -1
	for i, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmtIdx = i
		if old, err := flacvorbis.ParseFromMetaDataBlock(*meta); err == nil {
			for _, key := range []string{"ARTIST", "ALBUMARTIST", "ALBUM", "TITLE", "GENRE", "DATE", "TRACKNUMBER", "TOTALTRACKS"} {
				if vals, err := old.Get(key); err == nil && len(vals) > 0 {
					existing[key] = vals
				}
			}
		}
		break
	}

	cmts := flacvorbis.New()
	set := func(key, value string) error {
		if value == "" {
			if vals, ok := existing[key]; ok {
				for _, v := range vals {
					if err := cmts.Add(key, v); err != nil {
						return err
					}
				}
			}
			return nil
		}
		return cmts.Add(key, value)
	}

	track := ""
	if req.TrackNumber > 0 {
		track = strconv.Itoa(req.TrackNumber)
	}
	total := ""
	if req.TotalTracks > 0 {
		total = strconv.Itoa(req.TotalTracks)
	}

	fields := []struct{ key, value string }{
		{"ARTIST", req.Artist},
		{"ALBUMARTIST", req.AlbumArtist},
		{"ALBUM", req.Album},
		{"TITLE", req.Title},
		{"GENRE", req.Genre},
		{"DATE", req.Year},
		{"TRACKNUMBER", track},
		{"TOTALTRACKS", total},
	}
	for _, fv := range fields {
		if err := set(fv.key, fv.value); err != nil {
			return fmt.Errorf("add %s: %w", fv.key, err)
		}
	}

	cmtBlock := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtBlock
	} else {
		f.Meta = append(f.Meta, &cmtBlock)
	}

	switch req.CoverAction {
	case CoverReplace:
		stripPictureBlocks(f)
		pic, err := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover,
			"Front Cover",
			req.CoverData,
			req.CoverMIME,
		)
		if err != nil {
			return fmt.Errorf("create picture: %w", err)
		}
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	case CoverRemove:
		stripPictureBlocks(f)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func stripPictureBlocks(f *flac.File) {
	kept := make([]*flac.MetaDataBlock, 0, len(f.Meta))
	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			kept = append(kept, meta)
		}
	}
	f.Meta = kept
}
