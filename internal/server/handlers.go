// file: internal/server/handlers.go
// version: 1.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package server

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/music-tagger/internal/config"
	"github.com/jdfalk/music-tagger/internal/covers"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/resolve"
	"github.com/jdfalk/music-tagger/internal/session"
	"github.com/jdfalk/music-tagger/internal/tags"
)

// trackView is the listing shape for one record: the raw slots plus
// the precedence-resolved values the UI actually shows.
type trackView struct {
	*models.TrackRecord
	Effective   map[string]string `json:"effective"`
	CoverStatus string            `json:"cover_status"`
}

func viewOf(rec *models.TrackRecord) trackView {
	effective := make(map[string]string)
	for _, field := range []string{
		models.FieldArtist, models.FieldTitle, models.FieldAlbum,
		models.FieldAlbumArtist, models.FieldGenre, models.FieldYear,
		models.FieldTrackNumber,
	} {
		if v, _ := rec.EffectiveField(field); v != "" {
			effective[field] = v
		}
	}

	var embedded *models.CoverInfo
	if rec.CurrentTags != nil {
		embedded = rec.CurrentTags.Cover
	}
	return trackView{
		TrackRecord: rec,
		Effective:   effective,
		CoverStatus: covers.Status(covers.Merge(embedded, rec.ExternalCover)),
	}
}

func (s *Server) startScan(c *gin.Context) {
	var req struct {
		Root string `json:"root"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Root == "" {
		req.Root = config.AppConfig.RootDir
	}
	if req.Root == "" {
		respondBadRequest(c, "no root directory given or configured")
		return
	}

	result, err := s.session.Scan(c.Request.Context(), req.Root)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	dirs := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		dirs = append(dirs, g.Dir)
	}
	c.JSON(http.StatusOK, gin.H{
		"root":        result.Root,
		"track_count": len(result.Tracks()),
		"directories": dirs,
	})
}

func (s *Server) recentScans(c *gin.Context) {
	if s.session.Audit == nil {
		c.JSON(http.StatusOK, gin.H{"scans": []any{}})
		return
	}
	scans, err := s.session.Audit.RecentScans(10)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

func (s *Server) listTracks(c *gin.Context) {
	type groupView struct {
		Dir    string      `json:"dir"`
		Tracks []trackView `json:"tracks"`
	}
	groups := s.session.Groups()
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		gv := groupView{Dir: g.Dir, Tracks: make([]trackView, 0, len(g.Tracks))}
		for _, rec := range g.Tracks {
			gv.Tracks = append(gv.Tracks, viewOf(rec))
		}
		out = append(out, gv)
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

func (s *Server) getTrack(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		respondBadRequest(c, "path query parameter required")
		return
	}
	rec := s.session.Track(path)
	if rec == nil {
		respondNotFound(c, "unknown track "+path)
		return
	}
	c.JSON(http.StatusOK, viewOf(rec))
}

func (s *Server) setField(c *gin.Context) {
	var req struct {
		Path  string `json:"path" binding:"required"`
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := s.session.SetUserField(req.Path, req.Field, req.Value); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, viewOf(s.session.Track(req.Path)))
}

func (s *Server) selectTracks(c *gin.Context) {
	var req struct {
		Paths    []string `json:"paths"`
		Selected *bool    `json:"selected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := s.session.Select(req.Paths, *req.Selected); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req.Paths)})
}

// coverThumbnail serves the external cover of one track, scaled down
// to display size.
func (s *Server) coverThumbnail(c *gin.Context) {
	path := c.Query("path")
	rec := s.session.Track(path)
	if rec == nil {
		respondNotFound(c, "unknown track "+path)
		return
	}
	if rec.ExternalCover == nil || rec.ExternalCover.Path == "" {
		respondNotFound(c, "no external cover for "+path)
		return
	}
	data, err := os.ReadFile(rec.ExternalCover.Path)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	thumb, err := covers.DisplayThumbnail(data)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(thumb), thumb)
}

func (s *Server) startResolve(c *gin.Context) {
	var req struct {
		Paths            []string `json:"paths"`
		SkipOnline       bool     `json:"skip_online"`
		ForceFingerprint bool     `json:"force_fingerprint"`
	}
	_ = c.ShouldBindJSON(&req)

	opts := resolve.Options{SkipOnline: req.SkipOnline, ForceFingerprint: req.ForceFingerprint}
	// The run outlives this request; events are consumed on the
	// streaming endpoint and cancellation goes through DELETE.
	id, events, err := s.session.Resolve(context.Background(), req.Paths, opts)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	s.batches[id] = events
	s.mu.Unlock()

	c.JSON(http.StatusAccepted, gin.H{"batch_id": id})
}

func (s *Server) cancelResolve(c *gin.Context) {
	id := c.Param("id")
	if err := s.session.Runner.Cancel(id); err != nil {
		respondNotFound(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": id})
}

func (s *Server) resolveAlbum(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		respondBadRequest(c, "dir query parameter required")
		return
	}
	candidates, err := s.session.ResolveAlbum(c.Request.Context(), dir)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (s *Server) applyAlbum(c *gin.Context) {
	var req struct {
		Dir       string                `json:"dir" binding:"required"`
		Candidate models.AlbumCandidate `json:"candidate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := s.session.ApplyAlbumCandidate(req.Candidate, req.Dir); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": req.Candidate.Album})
}

func (s *Server) importITunes(c *gin.Context) {
	var req struct {
		Library string `json:"library"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Library == "" {
		req.Library = config.AppConfig.ITunesLibrary
	}
	if req.Library == "" {
		respondBadRequest(c, "no library path given or configured")
		return
	}

	matched, err := s.session.ImportITunes(req.Library)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

func coverActionFrom(name string) (tags.CoverAction, bool) {
	switch name {
	case "", "keep":
		return tags.CoverKeep, true
	case "replace":
		return tags.CoverReplace, true
	case "remove":
		return tags.CoverRemove, true
	}
	return tags.CoverKeep, false
}

func (s *Server) commit(c *gin.Context) {
	var req struct {
		Paths       []string `json:"paths"`
		CoverAction string   `json:"cover_action"`
	}
	_ = c.ShouldBindJSON(&req)

	action, ok := coverActionFrom(req.CoverAction)
	if !ok {
		respondBadRequest(c, "unknown cover_action "+req.CoverAction)
		return
	}

	results, err := s.session.Commit(c.Request.Context(), req.Paths, session.CommitOptions{CoverAction: action})
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	type resultView struct {
		Path  string `json:"path"`
		Ok    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	out := make([]resultView, 0, len(results))
	failed := 0
	for _, res := range results {
		rv := resultView{Path: res.Path, Ok: res.Ok()}
		if res.Err != nil {
			rv.Error = res.Err.Error()
			failed++
		}
		out = append(out, rv)
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(out),
		"failed":  failed,
		"results": out,
	})
}
