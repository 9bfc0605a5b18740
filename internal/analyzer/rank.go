package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// RiskKeywords mark clauses that commonly carry legal risk. Prefix forms
// like "indemn" and "liabil" deliberately match all their inflections;
// double-counting across overlapping keywords is expected and acceptable.
var RiskKeywords = []string{
	"indemn", "liabil", "warrant", "damages", "arbitration", "dispute",
	"jurisdiction", "governing law", "limitation of liability", "waiver",
	"termination", "renewal", "auto-renew", "confidential", "assignment",
	"non-compete", "noncompete", "non-solicit", "privacy", "data", "penalty",
	"late fee", "interest", "attorney", "notice", "cure period", "default",
}

// FinancialKeywords mark text about money, billing cadence, and penalties.
var FinancialKeywords = []string{
	"fee", "payment", "charge", "amount", "price", "rate", "interest",
	"$", "%", "per month", "monthly", "per year", "annually", "deposit",
	"balance", "invoice", "late", "penalty",
}

var (
	deadlineRe  = regexp.MustCompile(`(?i)\d{4}-\d{2}-\d{2}|within\s+\d+\s+days|no\s+less\s+than\s+\d+\s+days`)
	moneyHintRe = regexp.MustCompile(`(?i)[£$€]\s?\d|%\s?(fee|interest|penalty|charge)`)
	sectionRe   = regexp.MustCompile(`(?i)section\s+\d+(\.\d+)*`)
	paragraphRe = regexp.MustCompile(`\n{2,}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// splitParagraphs splits normalized text on blank-line boundaries, collapsing
// internal whitespace per paragraph and dropping empties.
func splitParagraphs(text string) []string {
	parts := paragraphRe.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(whitespaceRe.ReplaceAllString(p, " "))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// scoreParagraph rates a paragraph's legal salience by keyword density and
// date/money/clause-marker patterns. Very long paragraphs lose a point to
// discourage boilerplate walls of text.
func scoreParagraph(p string) int {
	lower := strings.ToLower(p)
	score := 0
	for _, k := range RiskKeywords {
		if strings.Contains(lower, k) {
			score += 3
		}
	}
	for _, k := range FinancialKeywords {
		if strings.Contains(lower, k) {
			score += 2
		}
	}
	if deadlineRe.MatchString(lower) {
		score += 2
	}
	if moneyHintRe.MatchString(lower) {
		score += 2
	}
	if sectionRe.MatchString(lower) {
		score += 1
	}
	if len(p) > 800 {
		score -= 1
	}
	return score
}

// minSelectedChars is the floor below which heuristic selection is considered
// to have failed and the original-order fallback kicks in.
const minSelectedChars = 5000

// SelectTopParagraphs reduces a document to its highest-value paragraphs
// within a character and paragraph budget. Paragraphs are accepted in
// descending score order (original order among ties) until a budget is hit;
// the scan stops at the first paragraph that would overflow rather than
// searching for a smaller fit. If scoring found too little, paragraphs are
// appended in original document order until the same budgets are hit, so a
// low-signal document still yields a usable payload.
func SelectTopParagraphs(text string, maxChars, maxParagraphs int) string {
	clean := StripRepeatedLines(text)
	paragraphs := splitParagraphs(clean)

	type ranked struct {
		index int
		score int
	}
	order := make([]ranked, len(paragraphs))
	for i, p := range paragraphs {
		order[i] = ranked{index: i, score: scoreParagraph(p)}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].score > order[j].score
	})

	picked := make([]string, 0, maxParagraphs)
	used := make(map[int]bool, maxParagraphs)
	total := 0
	for _, r := range order {
		if len(picked) >= maxParagraphs {
			break
		}
		// +2 for the blank-line separator
		length := len(paragraphs[r.index]) + 2
		if total+length > maxChars {
			break
		}
		picked = append(picked, paragraphs[r.index])
		used[r.index] = true
		total += length
	}

	if total < minSelectedChars {
		for i, p := range paragraphs {
			if used[i] {
				continue
			}
			if len(picked) >= maxParagraphs {
				break
			}
			length := len(p) + 2
			if total+length > maxChars {
				break
			}
			picked = append(picked, p)
			used[i] = true
			total += length
		}
	}

	return strings.Join(picked, "\n\n")
}
