package models

// Risk and importance levels. Anything outside this set coming back from the
// completion service is coerced to LevelMedium during normalization.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// ValidLevel reports whether s is one of the three accepted levels.
func ValidLevel(s string) bool {
	return s == LevelLow || s == LevelMedium || s == LevelHigh
}

// LabelValue is a short labeled fact, e.g. {"Date", "2024-01-01"} or
// {"Amount", "$1,500"}.
type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is the document-level portion of an Analysis. All list fields are
// hard-capped during normalization (5/4/6/5/5).
type Summary struct {
	DocumentType     string       `json:"documentType"`
	KeyPoints        []string     `json:"keyPoints"`
	Benefits         []string     `json:"benefits"`
	Risks            []string     `json:"risks"`
	ImportantDates   []LabelValue `json:"importantDates"`
	FinancialTerms   []LabelValue `json:"financialTerms"`
	OverallRiskLevel string       `json:"overallRiskLevel"`
}

// Clause is one annotated clause of the analyzed document. OriginalText is
// always empty in final output so the analysis never echoes source text
// verbatim.
type Clause struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Section      string   `json:"section"`
	OriginalText string   `json:"originalText"`
	Explanation  string   `json:"explanation"`
	Implications []string `json:"implications"`
	ActionItems  []string `json:"actionItems"`
	Importance   string   `json:"importance"`
}

// Analysis is the final, normalized result of the document pipeline.
type Analysis struct {
	Summary Summary  `json:"summary"`
	Clauses []Clause `json:"clauses"`
}

// PartialAnalysis is the schema-constrained result of analyzing a single
// chunk on the map-reduce path. List sizes are unbounded here; bounding
// happens at merge.
type PartialAnalysis struct {
	KeyPoints      []string     `json:"keyPoints"`
	Benefits       []string     `json:"benefits"`
	Risks          []string     `json:"risks"`
	ImportantDates []LabelValue `json:"importantDates"`
	FinancialTerms []LabelValue `json:"financialTerms"`
	Clauses        []Clause     `json:"clauses"`
}

// Chat roles as emitted by the client.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one message of the rolling conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reference points a chat answer back at a clause of the analysis.
type Reference struct {
	ClauseID string `json:"clauseId"`
	Section  string `json:"section"`
	Title    string `json:"title"`
}

// ChatReply is the grounded answer for one chat turn.
type ChatReply struct {
	Answer             string      `json:"answer"`
	References         []Reference `json:"references"`
	SuggestedQuestions []string    `json:"suggestedQuestions"`
}

// Feedback is a user's thumbs-up/down on a chat answer.
type Feedback struct {
	MessageID       string    `json:"messageId"`
	Feedback        string    `json:"feedback"` // "positive" or "negative"
	DocumentContext *Analysis `json:"documentContext,omitempty"`
}
