package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clipbot/config"
)

// ErrNoTranscript marks the expected business outcome of a video without
// captions. Callers skip the candidate; they do not treat this as a service
// fault.
var ErrNoTranscript = errors.New("transcript unavailable")

// Client fetches plain-text transcripts from the transcript service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a transcript client from configuration
func NewClient(cfg config.TranscriptConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: config.CollaboratorTimeout},
	}
}

// Fetch returns the transcript text for a video ID. A 404 or an empty
// transcript yields ErrNoTranscript; anything else unexpected is a fault.
func (c *Client) Fetch(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("no video ID provided")
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read transcript response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoTranscript
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript service error %d: %s", resp.StatusCode, snippet(body))
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		// Non-JSON usually means an upstream error page slipped through.
		return "", fmt.Errorf("transcript service returned non-JSON data: %s", snippet(body))
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return "", ErrNoTranscript
	}

	return text, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
