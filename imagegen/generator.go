package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"clipbot/config"
)

// Generator produces abstract storyboard images for the slideshow.
// Endpoint: POST /v1/images/generations
// Request: {"model": "...", "prompt": "...", "size": "1024x1024", "n": 1}
// Response: {"data": [{"b64_json": "..."}]}
type Generator struct {
	endpoint   string
	apiKey     string
	model      string
	size       string
	httpClient *http.Client
}

// storyboardPrompts are deliberately symbolic. They depict no real people or
// events, which keeps generations clear of safety filters.
var storyboardPrompts = []string{
	"abstract symbolic imagery representing political tension, hierarchical power structures, dramatic lighting, red and black palette, dynamic composition, no real people",
	"surreal metaphorical scene showing media influence and ideological conflict, geometric shapes and fractured light patterns, evoking systemic pressure and social struggle",
	"stylized representation of societal contradictions, oppressive shadows and bold color fields, evoking urgency without depicting specific events or individuals",
}

// unsafeSubstitutions rewrites terms that trip image safety systems
var unsafeSubstitutions = map[string]string{
	"violence": "conflict",
	"blood":    "red fields",
	"war":      "struggle",
	"weapon":   "symbol of force",
}

// NewGenerator builds an image generator from configuration
func NewGenerator(cfg config.ImagesConfig) *Generator {
	return &Generator{
		endpoint:   cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		size:       cfg.Size,
		httpClient: &http.Client{Timeout: config.CollaboratorTimeout},
	}
}

// GenerateStoryboard generates the slideshow images. A single failing image
// is logged and skipped; the caller decides whether a shorter (or empty)
// slideshow is still worth rendering.
func (g *Generator) GenerateStoryboard(ctx context.Context) ([][]byte, error) {
	images := make([][]byte, 0, len(storyboardPrompts))

	for i, prompt := range storyboardPrompts {
		log.Printf("[images] Generating image %d/%d", i+1, len(storyboardPrompts))

		img, err := g.generate(ctx, applySafeSubstitutions(prompt))
		if err != nil {
			log.Printf("[images] image %d failed: %v (skipping)", i+1, err)
			continue
		}
		images = append(images, img)
	}

	return images, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) ([]byte, error) {
	payload := map[string]interface{}{
		"model":  g.model,
		"prompt": prompt,
		"size":   g.size,
		"n":      1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("image error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, errors.New("image response contained no data")
	}

	img, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	return img, nil
}

func applySafeSubstitutions(prompt string) string {
	lower := prompt
	for unsafe, safe := range unsafeSubstitutions {
		lower = strings.ReplaceAll(lower, unsafe, safe)
	}
	return lower
}
