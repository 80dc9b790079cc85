package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"clipbot/scoring"
	"clipbot/types"
)

// Runner triggers one full pipeline pass.
type Runner interface {
	Run(ctx context.Context) (types.RunSummary, error)
}

// Previewer exposes discovery and scoring without producing anything.
type Previewer interface {
	ListCandidates(ctx context.Context) ([]types.Candidate, error)
	FetchStatistics(ctx context.Context, ids []string) (map[string]types.Statistics, error)
}

// Server is the HTTP control surface: trigger runs, preview scoring,
// answer health checks.
type Server struct {
	// baseCtx parents every triggered run, so process shutdown cancels
	// in-flight runs instead of orphaning them.
	baseCtx   context.Context
	runner    Runner
	previewer Previewer
	scorer    *scoring.Scorer
	threshold float64

	mu      sync.Mutex
	running bool
}

func NewServer(baseCtx context.Context, runner Runner, previewer Previewer, scorer *scoring.Scorer, threshold float64) *Server {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Server{
		baseCtx:   baseCtx,
		runner:    runner,
		previewer: previewer,
		scorer:    scorer,
		threshold: threshold,
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/run", s.handleRun)
	r.GET("/api/preview", s.handlePreview)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleRun kicks off a pipeline pass in the background and returns 202
// immediately. Only one pass runs at a time; a second request while one is
// in flight gets 409.
func (s *Server) handleRun(c *gin.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()
		if _, err := s.runner.Run(s.baseCtx); err != nil {
			log.Printf("[api] Triggered run failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "run started"})
}

type previewEntry struct {
	types.Candidate
	Score    float64 `json:"score"`
	Selected bool    `json:"selected"`
}

// handlePreview scores the current candidates and reports which would be
// selected, without producing any videos.
func (s *Server) handlePreview(c *gin.Context) {
	ctx := c.Request.Context()

	candidates, err := s.previewer.ListCandidates(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	ids := make([]string, len(candidates))
	for i, cand := range candidates {
		ids[i] = cand.ID
	}
	stats, err := s.previewer.FetchStatistics(ctx, ids)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	scored := s.scorer.ScoreAll(candidates, stats, time.Now())
	entries := make([]previewEntry, 0, len(scored))
	for _, sc := range scored {
		entries = append(entries, previewEntry{
			Candidate: sc.Candidate,
			Score:     sc.Score,
			Selected:  sc.Score >= s.threshold,
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(entries), "candidates": entries})
}
