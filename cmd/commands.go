// file: cmd/commands.go
// version: 1.0.0
// guid: 8c9d0e1f-2a3b-4c5d-6e7f-8a9b0c1d2e3f

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdfalk/music-tagger/internal/batch"
	"github.com/jdfalk/music-tagger/internal/config"
	"github.com/jdfalk/music-tagger/internal/resolve"
	"github.com/jdfalk/music-tagger/internal/server"
	"github.com/jdfalk/music-tagger/internal/session"
	"github.com/jdfalk/music-tagger/internal/watcher"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func requireRoot() (string, error) {
	if config.AppConfig.RootDir == "" {
		return "", fmt.Errorf("root directory not specified (use --dir or root_dir)")
	}
	return config.AppConfig.RootDir, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a music directory",
	Long:  `Scan a directory tree, read embedded tags and list what was found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Printf("Scanning directory: %s\n", root)
		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		printGroups(sess)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run the identification pipeline over the scan",
	Long: `Scan the directory and resolve every track: filename heuristics,
online text search and acoustic fingerprinting in order. Nothing is
written until commit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		opts := resolve.Options{SkipOnline: skipOnline, ForceFingerprint: forceFingerprint}
		id, events, err := sess.Resolve(cmd.Context(), nil, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Batch %s started\n", id)

		failed := 0
		for ev := range events {
			switch ev.Kind {
			case batch.EventItemResolved:
				fmt.Printf("  [%d/%d] %s\n", ev.Done, ev.Total, ev.Path)
			case batch.EventItemFailed:
				failed++
				fmt.Printf("  [%d/%d] %s FAILED: %s\n", ev.Done, ev.Total, ev.Path, ev.Err)
			case batch.EventBatchAborted:
				fmt.Printf("Aborted after %d/%d tracks\n", ev.Done, ev.Total)
			}
		}
		if failed > 0 {
			fmt.Printf("%d tracks failed to resolve\n", failed)
		}
		printGroups(sess)
		return nil
	},
}

var albumCmd = &cobra.Command{
	Use:   "album [directory]",
	Short: "Resolve album candidates for one directory",
	Long: `Look the directory up as an album and list ranked candidates.
With --apply N the Nth candidate fills album, artist and track
numbers across the directory (still uncommitted).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		dir := root
		if len(args) == 1 {
			dir = args[0]
		}

		candidates, err := sess.ResolveAlbum(cmd.Context(), dir)
		if err != nil {
			return fmt.Errorf("album lookup: %w", err)
		}
		for i, cand := range candidates {
			fmt.Printf("%d. %s / %s (%s) [%d tracks, score %.2f, %s]\n",
				i+1, cand.Artist, cand.Album, cand.ReleaseDate, cand.TrackCount, cand.MatchScore, cand.SourceProvider)
		}

		apply, _ := cmd.Flags().GetInt("apply")
		if apply > 0 {
			if apply > len(candidates) {
				return fmt.Errorf("candidate %d out of range (%d listed)", apply, len(candidates))
			}
			if err := sess.ApplyAlbumCandidate(candidates[apply-1], dir); err != nil {
				return err
			}
			fmt.Printf("Applied %q across %s\n", candidates[apply-1].Album, dir)
			printGroups(sess)
		}
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Resolve and write tags back into the files",
	Long: `Scan, resolve every selected track and write the winning values
into the files. Each file is written atomically; failures leave the
original untouched and are reported per file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		opts := resolve.Options{SkipOnline: skipOnline, ForceFingerprint: forceFingerprint}
		if _, events, err := sess.Resolve(cmd.Context(), nil, opts); err == nil {
			for range events {
			}
		}

		coverFlag, _ := cmd.Flags().GetString("cover")
		commitOpts, err := commitOptionsFor(coverFlag)
		if err != nil {
			return err
		}

		results, err := sess.Commit(cmd.Context(), nil, commitOpts)
		if err != nil {
			return err
		}
		failed := 0
		for _, res := range results {
			if res.Ok() {
				fmt.Printf("  wrote %s\n", res.Path)
			} else {
				failed++
				fmt.Printf("  FAILED %s: %v\n", res.Path, res.Err)
			}
		}
		fmt.Printf("Committed %d/%d files\n", len(results)-failed, len(results))
		if failed > 0 {
			return fmt.Errorf("%d files failed to write", failed)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Overlay an iTunes library export onto the scan",
	Long: `Parse an iTunes Music Library.xml and apply its hand-curated
metadata to matching scanned tracks as user edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		library, _ := cmd.Flags().GetString("library")
		if library == "" {
			library = config.AppConfig.ITunesLibrary
		}
		if library == "" {
			return fmt.Errorf("no library path given (use --library or itunes_library)")
		}

		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		matched, err := sess.ImportITunes(library)
		if err != nil {
			return err
		}
		fmt.Printf("Matched %d tracks from %s\n", matched, library)
		printGroups(sess)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := server.Config{
			Addr:         config.AppConfig.ServerAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if rt, _ := cmd.Flags().GetString("read-timeout"); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt, _ := cmd.Flags().GetString("write-timeout"); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it, _ := cmd.Flags().GetString("idle-timeout"); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return server.NewServer(sess).Start(cfg)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library and re-resolve on changes",
	Long: `Watch the root directory; after file activity settles, rescan and
re-run the offline pipeline stages. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requireRoot()
		if err != nil {
			return err
		}
		sess, cleanup, err := buildSession()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := sess.Scan(cmd.Context(), root); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		fmt.Printf("Watching %s\n", root)

		debounce, _ := cmd.Flags().GetDuration("debounce")
		w := watcher.New(func(dir string) {
			rescan(sess, dir)
		}, debounce)
		if err := w.Start(root); err != nil {
			return err
		}
		defer w.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		return nil
	},
}

func rescan(sess *session.Session, dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := sess.Scan(ctx, dir); err != nil {
		fmt.Printf("rescan error: %v\n", err)
		return
	}
	if _, events, err := sess.Resolve(ctx, nil, resolve.Options{SkipOnline: true}); err == nil {
		for range events {
		}
	}
	printGroups(sess)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("music-tagger %s\n", Version)
	},
}
