// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

// Package server exposes the session operations over HTTP: scanning,
// track listings, pipeline runs with streamed progress, album
// resolution and tag write-back.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/music-tagger/internal/batch"
	"github.com/jdfalk/music-tagger/internal/metrics"
	"github.com/jdfalk/music-tagger/internal/session"
)

// Server wraps one session behind a gin router.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	session    *session.Session

	mu      sync.Mutex
	batches map[string]<-chan batch.ProgressEvent
}

// Config holds server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer builds the router around an already-wired session.
func NewServer(sess *session.Session) *Server {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(newIPRateLimiter(600, 30).middleware())

	metrics.Register()

	s := &Server{
		router:  router,
		session: sess,
		batches: make(map[string]<-chan batch.ProgressEvent),
	}
	s.setupRoutes()
	return s
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start(cfg Config) error {
	s.httpServer = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("[INFO] server: listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[ERROR] server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Periodic process gauges while running.
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)
				metrics.SetMemoryAlloc(mem.Alloc)
				metrics.SetGoroutines(runtime.NumGoroutine())
			case <-quit:
				return
			}
		}
	}()

	<-quit
	log.Printf("[INFO] server: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/v1/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/scan", s.startScan)
		api.GET("/scans/recent", s.recentScans)

		api.GET("/tracks", s.listTracks)
		api.GET("/tracks/track", s.getTrack)
		api.PUT("/tracks/field", s.setField)
		api.PUT("/tracks/select", s.selectTracks)
		api.GET("/tracks/cover", s.coverThumbnail)

		api.POST("/resolve", s.startResolve)
		api.GET("/resolve/:id/events", s.streamEvents)
		api.DELETE("/resolve/:id", s.cancelResolve)

		api.GET("/albums/candidates", s.resolveAlbum)
		api.POST("/albums/apply", s.applyAlbum)

		api.POST("/commit", s.commit)

		api.POST("/import/itunes", s.importITunes)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
