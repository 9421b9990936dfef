// Package httpserver exposes the dashboard over HTTP. Clients read its
// state, steer navigation, follow changes over a websocket and push slide
// snapshots into the store.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/nucleus/internal/duckdb"
	"github.com/tinytelemetry/nucleus/internal/engine"
	"github.com/tinytelemetry/nucleus/internal/provider"
)

// Controller is the part of the running dashboard the API drives.
// Navigation calls must be safe from any goroutine; the TUI satisfies this
// by forwarding them into its event loop.
type Controller interface {
	Snapshot() engine.Snapshot
	GoToSlide(index int)
	Next()
	Prev()
}

// SnapshotStore is the narrow store contract required by the HTTP API.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snap duckdb.Snapshot) (int64, error)
	LatestSnapshots(ctx context.Context) ([]duckdb.Snapshot, error)
	CountSnapshots(ctx context.Context) (int64, error)
}

// Server provides an HTTP API for a running Nucleus dashboard.
type Server struct {
	addr      string
	ctrl      Controller
	store     SnapshotStore
	events    *hub
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server. store may be nil, in which case
// the snapshot routes answer 503.
func NewServer(addr string, ctrl Controller, store SnapshotStore) *Server {
	if addr == "" {
		addr = "127.0.0.1:3737"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		ctrl:   ctrl,
		store:  store,
		events: newHub(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/state", s.handleState)
	api.GET("/slides", s.handleSlides)
	api.GET("/events", s.handleEvents)
	api.POST("/slides/goto", s.handleGoTo)
	api.POST("/slides/next", s.handleStep(1))
	api.POST("/slides/prev", s.handleStep(-1))
	api.GET("/snapshots", s.handleSnapshots)
	api.POST("/snapshots", s.handlePutSnapshot)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go s.server.Serve(listener)
	go s.watch(s.ctx, eventInterval)
	return nil
}

// Addr returns the listen address, resolved once Start succeeded.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	s.events.closeAll()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
		"events": s.events.count(),
	}
	if s.store != nil {
		count, err := s.store.CountSnapshots(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read snapshot count"})
			return
		}
		body["snapshot_count"] = count
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleSlides(c *gin.Context) {
	snap := s.ctrl.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"active": snap.Active,
		"slides": snap.Slides,
	})
}

func (s *Server) handleGoTo(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing index field"})
		return
	}
	s.ctrl.GoToSlide(*req.Index)
	c.JSON(http.StatusAccepted, gin.H{"requested": *req.Index})
}

func (s *Server) handleStep(dir int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir > 0 {
			s.ctrl.Next()
		} else {
			s.ctrl.Prev()
		}
		c.JSON(http.StatusAccepted, gin.H{"from": s.ctrl.Snapshot().Active})
	}
}

func (s *Server) handleSnapshots(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot store disabled"})
		return
	}
	snaps, err := s.store.LatestSnapshots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read snapshots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshots": snaps,
		"count":     len(snaps),
	})
}

func (s *Server) handlePutSnapshot(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot store disabled"})
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	rec, err := provider.DecodeJSON(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Reject what a provider could not turn into a slide later.
	if _, err := rec.Slide(); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, provider.ErrUnknownSlide) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	seq, err := s.store.PutSnapshot(c.Request.Context(), provider.ToSnapshot(rec, "api"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store snapshot"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"seq": seq, "id": rec.ID})
}
