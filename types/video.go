package types

import (
	"strings"
	"time"
)

// Candidate represents a single discovered video under consideration
type Candidate struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ChannelID    string    `json:"channel_id,omitempty"`
	ChannelTitle string    `json:"channel_title,omitempty"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"published_at"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Statistics holds the counters attached to a candidate before scoring.
// Absent values stay zero.
type Statistics struct {
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// ScoredCandidate is a candidate with its statistics and derived score
type ScoredCandidate struct {
	Candidate  Candidate  `json:"candidate"`
	Statistics Statistics `json:"statistics"`
	Score      float64    `json:"score"`
}

// Commentary is the structured output of the commentary generator
type Commentary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Script      string `json:"script"`
}

// Artifact accumulates the per-candidate outputs across pipeline stages.
// Each field is empty until its stage completes.
type Artifact struct {
	RunID      string     `json:"run_id"`
	VideoID    string     `json:"video_id"`
	Transcript string     `json:"transcript,omitempty"`
	Commentary Commentary `json:"commentary,omitempty"`
	AudioPath  string     `json:"audio_path,omitempty"`
	ImagePaths []string   `json:"image_paths,omitempty"`
	VideoPath  string     `json:"video_path,omitempty"`
	VideoURL   string     `json:"video_url,omitempty"`
	UploadID   string     `json:"upload_id,omitempty"`
}

// RunSummary is the top-level wrapper for one pipeline pass
type RunSummary struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Discovered int         `json:"discovered"`
	Selected   int         `json:"selected"`
	Processed  int         `json:"processed"`
	Skipped    int         `json:"skipped"`
	Artifacts  []*Artifact `json:"artifacts"`
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ExtractVideoID pulls the video ID out of a youtube.com or youtu.be URL.
// Returns "" if the URL is not recognizable.
func ExtractVideoID(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	if idx := strings.Index(rawURL, "youtu.be/"); idx >= 0 {
		id := rawURL[idx+len("youtu.be/"):]
		if cut := strings.IndexAny(id, "?&#"); cut >= 0 {
			id = id[:cut]
		}
		return id
	}

	if strings.Contains(rawURL, "youtube.com/") {
		if idx := strings.Index(rawURL, "v="); idx >= 0 {
			id := rawURL[idx+2:]
			if cut := strings.IndexAny(id, "?&#"); cut >= 0 {
				id = id[:cut]
			}
			return id
		}
		if idx := strings.Index(rawURL, "/shorts/"); idx >= 0 {
			id := rawURL[idx+len("/shorts/"):]
			if cut := strings.IndexAny(id, "?&#"); cut >= 0 {
				id = id[:cut]
			}
			return id
		}
	}

	return ""
}
