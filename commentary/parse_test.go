package commentary

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseStrictJSON(t *testing.T) {
	got := Parse(`{"title": "The Title", "description": "A desc", "script": "The script."}`)

	if got.Title != "The Title" || got.Description != "A desc" || got.Script != "The script." {
		t.Fatalf("unexpected parse result: %+v", got)
	}
}

func TestParseFencedJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"T\", \"description\": \"D\", \"script\": \"S\"}\n```"

	got := Parse(raw)
	if got.Title != "T" || got.Script != "S" {
		t.Fatalf("fenced JSON not unwrapped: %+v", got)
	}
}

func TestParseJSONWithSurroundingProse(t *testing.T) {
	raw := `Here is your output: {"title": "T", "description": "D", "script": "S"} Hope it helps!`

	got := Parse(raw)
	if got.Title != "T" || got.Script != "S" {
		t.Fatalf("embedded JSON not extracted: %+v", got)
	}
}

func TestParsePlainTextFallsBackToScript(t *testing.T) {
	raw := "The bourgeois media spreads its narratives once again. Like and subscribe."

	got := Parse(raw)
	if got.Script != raw {
		t.Fatalf("raw text should become the script; got %q", got.Script)
	}
	if got.Title == "" {
		t.Fatal("fallback should derive a title from the script")
	}
	if len(got.Title) > 100 {
		t.Fatalf("derived title too long: %d chars", len(got.Title))
	}
}

func TestParseMissingTitleDerived(t *testing.T) {
	got := Parse(`{"description": "D", "script": "First words become the title here."}`)

	if got.Script != "First words become the title here." {
		t.Fatalf("script = %q", got.Script)
	}
	if !strings.HasPrefix(got.Title, "First words") {
		t.Fatalf("title not derived from script: %q", got.Title)
	}
}

func TestParseWhitespaceFields(t *testing.T) {
	got := Parse(`{"title": "  padded  ", "description": " d ", "script": " s "}`)

	if got.Title != "padded" || got.Description != "d" || got.Script != "s" {
		t.Fatalf("fields not trimmed: %+v", got)
	}
}

func TestTitleFromScriptTruncatesOnRuneBoundary(t *testing.T) {
	word := strings.Repeat("ж", 12)
	script := strings.Repeat(word+" ", 10)

	title := titleFromScript(script)

	if !utf8.ValidString(title) {
		t.Fatalf("title contains a split rune: %q", title)
	}
	if n := utf8.RuneCountInString(title); n > 100 {
		t.Fatalf("title has %d runes, want at most 100", n)
	}
	if !strings.HasSuffix(title, "...") {
		t.Fatalf("long title not truncated: %q", title)
	}
}
