package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipbot/config"
	"clipbot/scoring"
	"clipbot/types"
)

type stubRunner struct {
	started chan struct{}
	release chan struct{}
}

func (r *stubRunner) Run(context.Context) (types.RunSummary, error) {
	r.started <- struct{}{}
	<-r.release
	return types.RunSummary{}, nil
}

type ctxRunner struct {
	got chan context.Context
}

func (r *ctxRunner) Run(ctx context.Context) (types.RunSummary, error) {
	r.got <- ctx
	<-ctx.Done()
	return types.RunSummary{}, ctx.Err()
}

type stubPreviewer struct {
	candidates []types.Candidate
	stats      map[string]types.Statistics
}

func (p *stubPreviewer) ListCandidates(context.Context) ([]types.Candidate, error) {
	return p.candidates, nil
}

func (p *stubPreviewer) FetchStatistics(context.Context, []string) (map[string]types.Statistics, error) {
	return p.stats, nil
}

func testScorer() *scoring.Scorer {
	return scoring.NewScorer(config.ScoringConfig{
		Weights:                config.DefaultWeights(),
		KeywordCap:             5,
		ScoreMax:               20,
		MinAgeHours:            1,
		MissingPublishAgeHours: 168,
	})
}

func TestHealth(t *testing.T) {
	server := NewServer(context.Background(), nil, nil, testScorer(), 5.0)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	runner := &stubRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	server := NewServer(context.Background(), runner, nil, testScorer(), 5.0)
	router := server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first run status = %d, want 202", rec.Code)
	}
	<-runner.started

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second run status = %d, want 409", rec.Code)
	}

	close(runner.release)
}

func TestRunInheritsServerBaseContext(t *testing.T) {
	runner := &ctxRunner{got: make(chan context.Context, 1)}
	baseCtx, cancel := context.WithCancel(context.Background())
	server := NewServer(baseCtx, runner, nil, testScorer(), 5.0)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("run status = %d, want 202", rec.Code)
	}

	runCtx := <-runner.got
	cancel()

	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("cancelling the base context did not cancel the in-flight run")
	}
}

func TestPreviewScoresAndFlagsSelection(t *testing.T) {
	previewer := &stubPreviewer{
		candidates: []types.Candidate{
			{ID: "bigone00001", Title: "Big", PublishedAt: time.Now().Add(-6 * time.Hour)},
			{ID: "tiny0000002", Title: "Tiny", PublishedAt: time.Now().Add(-6 * time.Hour)},
		},
		stats: map[string]types.Statistics{
			"bigone00001": {Views: 500000, Likes: 40000, Comments: 5000},
			"tiny0000002": {Views: 3, Likes: 0, Comments: 0},
		},
	}
	server := NewServer(context.Background(), nil, previewer, testScorer(), 5.0)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preview", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Count      int `json:"count"`
		Candidates []struct {
			ID       string  `json:"id"`
			Score    float64 `json:"score"`
			Selected bool    `json:"selected"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if payload.Count != 2 {
		t.Fatalf("count = %d, want 2", payload.Count)
	}

	byID := map[string]bool{}
	for _, c := range payload.Candidates {
		byID[c.ID] = c.Selected
	}
	if !byID["bigone00001"] {
		t.Error("expected the high-traffic candidate to be selected")
	}
	if byID["tiny0000002"] {
		t.Error("expected the negligible candidate to not be selected")
	}
}
