// file: cmd/display.go
// version: 1.0.0
// guid: 9d0e1f2a-3b4c-5d6e-7f8a-9b0c1d2e3f4a

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jdfalk/music-tagger/internal/covers"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/session"
	"github.com/jdfalk/music-tagger/internal/tags"
)

// printGroups renders the session's track set grouped by directory,
// one line per track with the precedence-resolved values.
func printGroups(sess *session.Session) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	defer w.Flush()

	for _, group := range sess.Groups() {
		fmt.Fprintf(w, "\n%s\n", group.Dir)
		fmt.Fprintln(w, "  SEL\t#\tARTIST\tTITLE\tALBUM\tCOVER\tSOURCE")
		for _, rec := range group.Tracks {
			sel := " "
			if rec.Selected {
				sel = "*"
			}
			num, _ := rec.EffectiveField(models.FieldTrackNumber)
			artist, artistProv := rec.EffectiveField(models.FieldArtist)
			title, _ := rec.EffectiveField(models.FieldTitle)
			albumName, _ := rec.EffectiveField(models.FieldAlbum)
			if title == "" {
				title = filepath.Base(rec.Path)
			}

			var embedded *models.CoverInfo
			if rec.CurrentTags != nil {
				embedded = rec.CurrentTags.Cover
			}
			cover := covers.Status(covers.Merge(embedded, rec.ExternalCover))

			source := string(artistProv)
			if rec.Err != "" {
				source = "error: " + rec.Err
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				sel, num, artist, title, albumName, cover, source)
		}
	}
}

func commitOptionsFor(coverFlag string) (session.CommitOptions, error) {
	switch coverFlag {
	case "", "keep":
		return session.CommitOptions{CoverAction: tags.CoverKeep}, nil
	case "replace":
		return session.CommitOptions{CoverAction: tags.CoverReplace}, nil
	case "remove":
		return session.CommitOptions{CoverAction: tags.CoverRemove}, nil
	}
	return session.CommitOptions{}, fmt.Errorf("unknown cover action %q", coverFlag)
}
