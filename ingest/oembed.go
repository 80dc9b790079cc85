package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clipbot/config"
	"clipbot/types"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

// LookupMetadata resolves title and channel name for a bare video URL via
// the oEmbed endpoint. Failures are soft: on-demand processing can still run
// with just the transcript, so the caller gets a candidate with empty
// metadata rather than an error.
func LookupMetadata(ctx context.Context, videoURL string) types.Candidate {
	candidate := types.Candidate{
		ID:           types.ExtractVideoID(videoURL),
		URL:          videoURL,
		DiscoveredAt: time.Now(),
	}

	endpoint := fmt.Sprintf("%s?url=%s&format=json", oembedEndpoint, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return candidate
	}

	client := &http.Client{Timeout: config.CollaboratorTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return candidate
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return candidate
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return candidate
	}

	candidate.Title = payload.Title
	candidate.ChannelTitle = payload.AuthorName
	return candidate
}
