package commentary

import (
	"encoding/json"
	"strings"

	"clipbot/config"
	"clipbot/types"
)

// Parse deserializes a model reply into a Commentary. The contract asks for
// strict JSON, but models drift: fenced code blocks are unwrapped, and a
// reply that is not JSON at all degrades to using the raw text as the script
// so the candidate still produces a usable result.
func Parse(raw string) types.Commentary {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	var out types.Commentary
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		out.Title = strings.TrimSpace(out.Title)
		out.Description = strings.TrimSpace(out.Description)
		out.Script = strings.TrimSpace(out.Script)

		// Per-field fallbacks: the script is the one field nothing works
		// without, the rest can be derived.
		if out.Script == "" {
			out.Script = text
		}
		if out.Title == "" {
			out.Title = titleFromScript(out.Script)
		}
		return out
	}

	// Some replies wrap valid JSON in commentary of their own; try the
	// outermost object before giving up.
	if inner := extractJSONObject(text); inner != "" {
		var out types.Commentary
		if err := json.Unmarshal([]byte(inner), &out); err == nil && strings.TrimSpace(out.Script) != "" {
			out.Title = strings.TrimSpace(out.Title)
			out.Description = strings.TrimSpace(out.Description)
			out.Script = strings.TrimSpace(out.Script)
			if out.Title == "" {
				out.Title = titleFromScript(out.Script)
			}
			return out
		}
	}

	script := strings.TrimSpace(raw)
	return types.Commentary{
		Title:  titleFromScript(script),
		Script: script,
	}
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// titleFromScript derives a title from the opening words of the script
func titleFromScript(script string) string {
	words := strings.Fields(script)
	if len(words) > 10 {
		words = words[:10]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > config.MaxTitleLength {
		title = string(runes[:config.MaxTitleLength-3]) + "..."
	}
	return title
}
