package analyzer

import (
	"encoding/json"
	"strings"
)

// unmarshalLenient decodes raw as JSON into v. On a strict parse failure it
// retries with the outermost {...} span, which handles models wrapping their
// JSON in prose or code fences. Returns false when both attempts fail; the
// caller applies its own fallback.
func unmarshalLenient(raw string, v interface{}) bool {
	if json.Unmarshal([]byte(raw), v) == nil {
		return true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v) == nil
}

// truncate shortens s to at most n characters, marking the cut with an
// ellipsis. Rune-based so prompts never carry a broken trailing character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
