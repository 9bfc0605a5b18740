package analyzer

import "testing"

func TestUnmarshalLenientStrictJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if !unmarshalLenient(`{"a": 7}`, &v) || v.A != 7 {
		t.Errorf("Expected strict JSON to parse, got %+v", v)
	}
}

func TestUnmarshalLenientFencedJSON(t *testing.T) {
	raw := "```json\n{\"a\": 3}\n```"
	var v struct {
		A int `json:"a"`
	}
	if !unmarshalLenient(raw, &v) || v.A != 3 {
		t.Errorf("Expected fenced JSON to parse via the outermost braces, got %+v", v)
	}
}

func TestUnmarshalLenientProseWrappedJSON(t *testing.T) {
	raw := `Here is the analysis you asked for: {"a": 9} Hope this helps!`
	var v struct {
		A int `json:"a"`
	}
	if !unmarshalLenient(raw, &v) || v.A != 9 {
		t.Errorf("Expected prose-wrapped JSON to parse, got %+v", v)
	}
}

func TestUnmarshalLenientGarbage(t *testing.T) {
	var v struct{}
	if unmarshalLenient("no json here at all", &v) {
		t.Error("Expected parse to fail on text with no braces")
	}
	if unmarshalLenient("{ definitely broken", &v) {
		t.Error("Expected parse to fail on unclosed braces")
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	if got := truncate("héllo wörld", 6); len([]rune(got)) != 6 {
		t.Errorf("Expected 6 runes, got %q (%d runes)", got, len([]rune(got)))
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short strings untouched, got %q", got)
	}
}
