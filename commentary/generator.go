package commentary

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"clipbot/config"
	"clipbot/types"
)

// Generator turns a video transcript into structured commentary using the
// Cohere chat API. The persona prompt is opaque configuration: it is sent as
// the preamble verbatim and never inspected here.
type Generator struct {
	client      *cohereclient.Client
	model       string
	persona     string
	maxTokens   int
	temperature float64
}

// outputContract is appended after the persona so replies come back as JSON
// we can deserialize instead of loose prose.
const outputContract = `

Respond with ONLY a JSON object of this exact shape, no markdown fences:
{"title": "...", "description": "...", "script": "..."}
The script is read aloud by a TTS voice, so keep sentences tight.`

// NewGenerator builds a Cohere-backed commentary generator
func NewGenerator(cfg config.CommentaryConfig) *Generator {
	// Force HTTP/1.1; the Cohere endpoint intermittently resets HTTP/2
	// streams on long generations.
	httpClient := &http.Client{
		Timeout: config.CommentaryTimeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	)

	return &Generator{
		client:      client,
		model:       cfg.Model,
		persona:     cfg.PersonaPrompt(),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate produces commentary from a transcript. Empty transcripts are
// refused before any network call.
func (g *Generator) Generate(ctx context.Context, transcript string) (types.Commentary, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return types.Commentary{}, errors.New("empty transcript passed to commentary generator")
	}
	if len(transcript) > config.MaxTranscriptChars {
		transcript = transcript[:config.MaxTranscriptChars]
	}

	message := "Use ONLY the text inside the TRANSCRIPT block.\n" +
		"Ignore logs, stack traces, or errors from any pipeline stage.\n\n" +
		"TRANSCRIPT:\n<<<BEGIN_TRANSCRIPT>>>\n" + transcript + "\n<<<END_TRANSCRIPT>>>"

	preamble := g.persona + outputContract
	maxTokens := g.maxTokens
	temperature := g.temperature

	resp, err := g.client.Chat(ctx, &cohere.ChatRequest{
		Message:     message,
		Model:       &g.model,
		Preamble:    &preamble,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return types.Commentary{}, fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return types.Commentary{}, errors.New("cohere chat returned empty response")
	}

	return Parse(resp.Text), nil
}
