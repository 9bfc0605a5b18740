package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"clauselens/internal/analyzer"
	"clauselens/internal/models"
)

// Per-turn context must stay small for latency and cost, so only the few
// clauses most relevant to the question travel in the context card; the
// system instruction carries a more liberally truncated view of the whole
// document for peripheral awareness.
const (
	maxContextClauses    = 5
	maxInstructionClauses = 20
	cardFieldChars       = 350
	instructionExplChars = 400
	instructionTextChars = 350
	maxHistoryTurns      = 6
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9\s%$.-]`)

// normalizeForMatch lowercases and strips punctuation except the characters
// that matter in financial text (%$.-).
func normalizeForMatch(s string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(s), " ")
}

// relevanceScore rates a clause against a question: +1 per question token
// (longer than 2 chars) found in the clause text, +2 per risk keyword, +1
// per financial keyword, and a +2/+1 bonus for high/medium importance.
func relevanceScore(question string, c models.Clause) int {
	text := normalizeForMatch(strings.Join([]string{c.Title, c.Section, c.OriginalText, c.Explanation}, " "))

	score := 0
	for _, term := range strings.Fields(normalizeForMatch(question)) {
		if len(term) > 2 && strings.Contains(text, term) {
			score++
		}
	}
	for _, k := range analyzer.RiskKeywords {
		if strings.Contains(text, k) {
			score += 2
		}
	}
	for _, k := range analyzer.FinancialKeywords {
		if strings.Contains(text, k) {
			score++
		}
	}
	switch c.Importance {
	case models.LevelHigh:
		score += 2
	case models.LevelMedium:
		score++
	}
	return score
}

// ContextSummary is the minimal summary slice of a context card.
type ContextSummary struct {
	DocumentType     string `json:"documentType"`
	OverallRiskLevel string `json:"overallRiskLevel"`
}

// ContextClause is one trimmed clause of a context card.
type ContextClause struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Section      string `json:"section"`
	OriginalText string `json:"originalText"`
	Explanation  string `json:"explanation"`
}

// NarrowContext is the bounded, relevance-ranked context card sent to ground
// one chat turn.
type NarrowContext struct {
	Summary *ContextSummary `json:"summary,omitempty"`
	Clauses []ContextClause `json:"clauses"`
}

// BuildNarrowContext re-ranks the analysis clauses by lexical relevance to
// the question and keeps the top few, trimmed to a fixed size. Ties preserve
// the original clause order.
func BuildNarrowContext(question string, analysis *models.Analysis) NarrowContext {
	var ctx NarrowContext
	if analysis == nil {
		ctx.Clauses = []ContextClause{}
		return ctx
	}

	type scored struct {
		clause models.Clause
		score  int
	}
	ranked := make([]scored, len(analysis.Clauses))
	for i, c := range analysis.Clauses {
		ranked[i] = scored{clause: c, score: relevanceScore(question, c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > maxContextClauses {
		ranked = ranked[:maxContextClauses]
	}

	ctx.Clauses = make([]ContextClause, 0, len(ranked))
	for _, r := range ranked {
		ctx.Clauses = append(ctx.Clauses, ContextClause{
			ID:           r.clause.ID,
			Title:        r.clause.Title,
			Section:      r.clause.Section,
			OriginalText: truncate(r.clause.OriginalText, cardFieldChars),
			Explanation:  truncate(r.clause.Explanation, cardFieldChars),
		})
	}
	ctx.Summary = &ContextSummary{
		DocumentType:     analysis.Summary.DocumentType,
		OverallRiskLevel: analysis.Summary.OverallRiskLevel,
	}
	return ctx
}

// buildSystemInstruction sets the chat persona and grounds it with a
// serialized view of the full document context.
func buildSystemInstruction(analysis *models.Analysis) string {
	header := `You are an AI assistant that explains legal documents in plain English.
- Be concise, neutral, and practical.
- Reference relevant clauses with their clauseId when possible.
- If unsure, say you don't know.
- This is not legal advice; include a brief disclaimer when appropriate.`
	return header + "\n\nDocument Context:\n" + serializeDocumentContext(analysis)
}

func serializeDocumentContext(analysis *models.Analysis) string {
	if analysis == nil {
		return "No context provided."
	}
	var lines []string

	docType := analysis.Summary.DocumentType
	if docType == "" {
		docType = "Unknown"
	}
	lines = append(lines, "documentType: "+docType)
	if analysis.Summary.OverallRiskLevel != "" {
		lines = append(lines, "overallRiskLevel: "+analysis.Summary.OverallRiskLevel)
	}
	if len(analysis.Summary.KeyPoints) > 0 {
		points := analysis.Summary.KeyPoints
		if len(points) > 6 {
			points = points[:6]
		}
		lines = append(lines, "keyPoints: "+strings.Join(points, " | "))
	}

	clauses := analysis.Clauses
	if len(clauses) > maxInstructionClauses {
		clauses = clauses[:maxInstructionClauses]
	}
	lines = append(lines, "clauses:")
	for _, c := range clauses {
		importance := c.Importance
		if importance == "" {
			importance = "n/a"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s %s (%s)", c.ID, c.Section, c.Title, importance))
		if c.Explanation != "" {
			lines = append(lines, "  explanation: "+truncate(c.Explanation, instructionExplChars))
		}
		if c.OriginalText != "" {
			lines = append(lines, "  original: "+truncate(c.OriginalText, instructionTextChars))
		}
	}
	return strings.Join(lines, "\n")
}

// trimHistory prepares the rolling conversation history for the model: keep
// from the first user turn onward, cap at the most recent turns, drop empty
// messages, and never start with a model turn.
func trimHistory(history []models.ChatTurn) []models.ChatTurn {
	firstUser := -1
	for i, turn := range history {
		if turn.Role == models.RoleUser {
			firstUser = i
			break
		}
	}
	if firstUser == -1 {
		return nil
	}

	trimmed := history[firstUser:]
	if len(trimmed) > maxHistoryTurns {
		trimmed = trimmed[len(trimmed)-maxHistoryTurns:]
	}

	mapped := make([]models.ChatTurn, 0, len(trimmed))
	for _, turn := range trimmed {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		role := turn.Role
		if role != models.RoleUser {
			role = models.RoleModel
		}
		mapped = append(mapped, models.ChatTurn{Role: role, Content: turn.Content})
	}
	for len(mapped) > 0 && mapped[0].Role != models.RoleUser {
		mapped = mapped[1:]
	}
	return mapped
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
