package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clipbot/config"
)

// Client synthesizes speech through an OpenAI-style audio endpoint.
// Endpoint: POST /v1/audio/speech
// Request: {"model": "...", "voice": "...", "input": "...", "speed": 1.2, "response_format": "mp3"}
// Response: raw audio bytes.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	voice      string
	speed      float64
	httpClient *http.Client
}

// NewClient builds a TTS client from configuration
func NewClient(cfg config.TTSConfig) *Client {
	return &Client{
		endpoint:   cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		voice:      cfg.Voice,
		speed:      cfg.Speed,
		httpClient: &http.Client{Timeout: config.CollaboratorTimeout},
	}
}

// Synthesize converts text to audio bytes. Empty or whitespace-only text is
// refused before any network call.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty script passed to TTS")
	}

	payload := map[string]interface{}{
		"model":           c.model,
		"voice":           c.voice,
		"input":           text,
		"speed":           c.speed,
		"response_format": "mp3",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tts error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts returned empty audio")
	}

	return audio, nil
}
