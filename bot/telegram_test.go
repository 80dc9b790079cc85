package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"clipbot/transcript"
)

func TestFirstURL(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"check this out https://www.youtube.com/watch?v=abc please", "https://www.youtube.com/watch?v=abc"},
		{"http://youtu.be/abc trailing words", "http://youtu.be/abc"},
		{"no link here", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := firstURL(tt.text); got != tt.want {
			t.Errorf("firstURL(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestErrorMessageForMissingTranscript(t *testing.T) {
	b := &Bot{}

	msg := b.errorMessage(transcript.ErrNoTranscript)
	if !strings.Contains(msg, "transcript") {
		t.Errorf("expected transcript-specific message, got %q", msg)
	}

	wrapped := fmt.Errorf("processing video: %w", transcript.ErrNoTranscript)
	if b.errorMessage(wrapped) != msg {
		t.Error("wrapped sentinel should produce the same message")
	}

	generic := b.errorMessage(errors.New("connection refused"))
	if !strings.Contains(generic, "connection refused") {
		t.Errorf("generic errors should surface the cause, got %q", generic)
	}
}
