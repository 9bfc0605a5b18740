package analyzer

import (
	"regexp"
	"strings"
)

var (
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
	pageLineRe      = regexp.MustCompile(`(?i)^page\s+\d+(\s*of\s*\d+)?$`)
	numberLineRe    = regexp.MustCompile(`^\d+\s*$`)
)

// Normalize cleans raw extracted text: carriage returns become newlines,
// trailing whitespace before newlines is stripped, runs of three or more
// newlines collapse to exactly two, and the ends are trimmed. Idempotent.
func Normalize(raw string) string {
	t := strings.ReplaceAll(raw, "\r", "\n")
	t = trailingSpaceRe.ReplaceAllString(t, "\n")
	t = multiNewlineRe.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

// StripRepeatedLines removes headers and footers that repeat across many
// pages, plus "Page N of M" lines and bare page numbers. Blank lines are
// always kept since they delimit paragraphs.
func StripRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")

	freq := make(map[string]int)
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if len(s) > 120 {
			// skip long content lines
			continue
		}
		freq[strings.ToLower(s)]++
	}

	threshold := len(lines) / 100
	if threshold < 3 {
		threshold = 3
	}

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		s := strings.ToLower(strings.TrimSpace(line))
		if s == "" {
			kept = append(kept, line)
			continue
		}
		if pageLineRe.MatchString(s) {
			continue
		}
		if numberLineRe.MatchString(s) {
			continue
		}
		if freq[s] > threshold {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
