package types

import "testing"

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/abc123XYZ_-", "abc123XYZ_-"},
		{"not a video url", "https://example.com/watch?v=nope", ""},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ExtractVideoID(c.url); got != c.want {
				t.Fatalf("ExtractVideoID(%q) = %q; want %q", c.url, got, c.want)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	if got := WatchURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("WatchURL returned %q", got)
	}
}
