package upload

import (
	"strings"
	"testing"
	"unicode/utf8"

	"clipbot/config"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short untouched", "A short title", "A short title"},
		{"exactly at limit", strings.Repeat("a", config.MaxTitleLength), strings.Repeat("a", config.MaxTitleLength)},
		{"over the limit", strings.Repeat("a", 150), strings.Repeat("a", config.MaxTitleLength-3) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateTitle(tt.title); got != tt.want {
				t.Errorf("truncateTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTruncateTitleKeepsRunesIntact(t *testing.T) {
	title := strings.Repeat("знаменитый ", 20)

	got := truncateTitle(title)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated title contains a split rune: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != config.MaxTitleLength {
		t.Fatalf("truncated title has %d runes, want %d", n, config.MaxTitleLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated title missing ellipsis: %q", got)
	}
}
