package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipbot/config"
)

// Shotstack renders slideshows through the hosted Shotstack API: an edit
// timeline is submitted, then the render is polled until done or failed.
//
// Asset src values are passed through verbatim and fetched by the hosted
// service, so AudioPath and ImagePaths must be URLs Shotstack can reach
// (for locally generated artifacts that means publicly readable storage,
// e.g. the S3 archive bucket). Local file paths only work with the local
// ffmpeg renderer.
type Shotstack struct {
	endpoint     string
	apiKey       string
	pollInterval time.Duration
	pollTimeout  time.Duration
	httpClient   *http.Client
}

// NewShotstack builds a hosted renderer from configuration
func NewShotstack(cfg config.RenderConfig) *Shotstack {
	return &Shotstack{
		endpoint:     strings.TrimRight(cfg.ShotstackURL, "/"),
		apiKey:       cfg.ShotstackAPIKey,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		httpClient:   &http.Client{Timeout: config.CollaboratorTimeout},
	}
}

// slide duration when audio length is unknown to the edit
const slideSeconds = 5.0

// Render submits the edit and polls until the hosted render completes.
// A job without images degrades to the title caption over the narration
// rather than failing the candidate.
func (s *Shotstack) Render(ctx context.Context, job Job) (Result, error) {
	if len(job.ImagePaths) == 0 && job.Title == "" {
		return Result{}, errors.New("nothing to render: no images and no title")
	}

	renderID, err := s.submit(ctx, job)
	if err != nil {
		return Result{}, err
	}

	url, err := s.poll(ctx, renderID)
	if err != nil {
		return Result{}, err
	}

	return Result{URL: url}, nil
}

func (s *Shotstack) submit(ctx context.Context, job Job) (string, error) {
	clips := make([]map[string]interface{}, 0, len(job.ImagePaths)+1)
	start := 0.0
	for _, img := range job.ImagePaths {
		clips = append(clips, map[string]interface{}{
			"asset":  map[string]interface{}{"type": "image", "src": img},
			"start":  start,
			"length": slideSeconds,
			"effect": "zoomIn",
		})
		start += slideSeconds
	}

	var tracks []map[string]interface{}
	if len(clips) > 0 {
		tracks = append(tracks, map[string]interface{}{"clips": clips})
	}
	if job.Title != "" {
		tracks = append([]map[string]interface{}{{
			"clips": []map[string]interface{}{{
				"asset":  map[string]interface{}{"type": "title", "text": job.Title, "style": "minimal"},
				"start":  0,
				"length": slideSeconds,
			}},
		}}, tracks...)
	}

	edit := map[string]interface{}{
		"timeline": map[string]interface{}{
			"soundtrack": map[string]interface{}{"src": job.AudioPath},
			"tracks":     tracks,
		},
		"output": map[string]interface{}{
			"format":     "mp4",
			"resolution": "hd",
		},
	}

	body, err := json.Marshal(edit)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("render submit error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var parsed struct {
		Response struct {
			ID string `json:"id"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if parsed.Response.ID == "" {
		return "", errors.New("render submit returned no ID")
	}

	return parsed.Response.ID, nil
}

func (s *Shotstack) poll(ctx context.Context, renderID string) (string, error) {
	deadline := time.Now().Add(s.pollTimeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("render %s timed out after %s", renderID, s.pollTimeout)
		}

		status, url, err := s.status(ctx, renderID)
		if err != nil {
			return "", err
		}

		switch status {
		case "done":
			return url, nil
		case "failed":
			return "", fmt.Errorf("render %s failed", renderID)
		}
		// queued/fetching/rendering: keep polling
	}
}

func (s *Shotstack) status(ctx context.Context, renderID string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/"+renderID, nil)
	if err != nil {
		return "", "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("render status failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", "", fmt.Errorf("render status error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var parsed struct {
		Response struct {
			Status string `json:"status"`
			URL    string `json:"url"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decode status response: %w", err)
	}

	return parsed.Response.Status, parsed.Response.URL, nil
}
