package config

import "time"

// Discovery and scoring constants
const (
	// StatsBatchSize is the maximum number of video IDs per statistics call.
	// Batching up to the API limit keeps quota cost bounded per run.
	StatsBatchSize = 50
)

// HTTP client constants
const (
	// CollaboratorTimeout bounds every external HTTP call (transcript, TTS,
	// images, render submit/poll)
	CollaboratorTimeout = 30 * time.Second

	// CommentaryTimeout allows the LLM call more headroom
	CommentaryTimeout = 60 * time.Second
)

// Slideshow output constants (local ffmpeg renderer)
const (
	// VideoWidth and VideoHeight give a 9:16 vertical output
	VideoWidth  = 1080
	VideoHeight = 1920

	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	VideoPreset  = "fast"

	// MaxVideoDuration caps the rendered clip length in seconds
	MaxVideoDuration = 180.0
)

// Commentary constants
const (
	// MaxTitleLength is the YouTube title character limit
	MaxTitleLength = 100

	// MaxTranscriptChars truncates oversized transcripts before the LLM call
	MaxTranscriptChars = 24000
)
