package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clauselens/internal/llm"
	"clauselens/internal/models"
	"clauselens/pkg/logger"
)

// Options are the pipeline budgets. The defaults mirror production behavior;
// tests lower SinglePassLimit to exercise the map-reduce branch.
type Options struct {
	MaxSelectChars      int // paragraph-selection character budget
	MaxSelectParagraphs int // paragraph-selection count budget
	SinglePassLimit     int // selections at or under this run in one pass
	ChunkSize           int // map-reduce chunk size in characters
}

// DefaultOptions returns the production budgets. The single-pass limit sits
// above the selection budget, so map-reduce only triggers when the limits
// are tightened.
func DefaultOptions() Options {
	return Options{
		MaxSelectChars:      60000,
		MaxSelectParagraphs: 120,
		SinglePassLimit:     70000,
		ChunkSize:           30000,
	}
}

// Service turns an extracted document into a normalized Analysis by way of
// the injected completion service. Every completion failure is caught and
// substituted with a conservative fallback, so Analyze always produces a
// bounded result; the model is treated as unreliable-by-default.
type Service struct {
	llm  llm.CompletionService
	log  *logger.Logger
	opts Options
}

// New creates an analysis Service with the default budgets.
func New(client llm.CompletionService, log *logger.Logger) *Service {
	return NewWithOptions(client, log, DefaultOptions())
}

// NewWithOptions creates an analysis Service with explicit budgets.
func NewWithOptions(client llm.CompletionService, log *logger.Logger, opts Options) *Service {
	return &Service{llm: client, log: log, opts: opts}
}

// Analyze runs the full pipeline: normalize the raw text, rank paragraphs
// into a focused selection, then either a single pass (summary + clauses
// prompts) or map-reduce (per-chunk analysis plus two merge prompts)
// depending on selection size, and finally normalization of the result
// shape. Text cleanup happens here rather than in each extractor so every
// input path (document, pasted text, OCR) sees the same paragraph
// boundaries.
func (s *Service) Analyze(ctx context.Context, text, docTypeHint string) *models.Analysis {
	focused := SelectTopParagraphs(Normalize(text), s.opts.MaxSelectChars, s.opts.MaxSelectParagraphs)

	var analysis *models.Analysis
	if len(focused) <= s.opts.SinglePassLimit {
		s.log.Debug(fmt.Sprintf("Analyzing %d chars in a single pass", len(focused)))
		analysis = s.analyzeSinglePass(ctx, focused, docTypeHint)
	} else {
		s.log.Debug(fmt.Sprintf("Selection of %d chars exceeds single-pass limit, running map-reduce", len(focused)))
		analysis = s.analyzeMapReduce(ctx, focused, docTypeHint)
	}

	normalizeAnalysis(analysis, docTypeHint)
	return analysis
}

// singlePassSummary is the decoded shape of the single-pass summary call.
type singlePassSummary struct {
	DocumentType     string   `json:"documentType"`
	KeyPoints        []string `json:"keyPoints"`
	Risks            []string `json:"risks"`
	Benefits         []string `json:"benefits"`
	OverallRiskLevel string   `json:"overallRiskLevel"`
}

// clauseSeed is the decoded shape of one single-pass clause.
type clauseSeed struct {
	Title       string `json:"title"`
	Section     string `json:"section"`
	Explanation string `json:"explanation"`
	Importance  string `json:"importance"`
}

func (s *Service) analyzeSinglePass(ctx context.Context, text, docTypeHint string) *models.Analysis {
	// Summary and clauses are fetched by two independently-budgeted calls;
	// either can fail without taking the other down.
	var summary singlePassSummary
	raw, err := s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeSummary,
		System:      analyzerSystemInstruction,
		Prompt:      summaryPrompt(text),
		Schema:      singleSummarySchema(),
		Temperature: 0.1,
		TopK:        20,
		TopP:        0.8,
		MaxTokens:   summaryMaxTokens,
	})
	ok := err == nil && unmarshalLenient(raw, &summary)
	if !ok {
		if err != nil {
			s.log.Warn(fmt.Sprintf("Summary completion failed, using fallback: %v", err))
		} else {
			s.log.Warn("Summary response was not valid JSON, using fallback")
		}
		summary = fallbackSummary(docTypeHint)
	}

	// Dates and money come from the deterministic extractors, never from the
	// model.
	dates := ExtractDates(text)
	if len(dates) > 3 {
		dates = dates[:3]
	}
	money := ExtractMoney(text)
	if len(money) > 3 {
		money = money[:3]
	}

	var clauses []models.Clause
	var decoded struct {
		Clauses []clauseSeed `json:"clauses"`
	}
	raw, err = s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeSummary,
		System:      analyzerSystemInstruction,
		Prompt:      clausesPrompt(text),
		Schema:      singleClausesSchema(),
		Temperature: 0.1,
		TopK:        20,
		TopP:        0.8,
		MaxTokens:   clausesMaxTokens,
	})
	if err != nil {
		s.log.Warn(fmt.Sprintf("Clauses completion failed, returning no clauses: %v", err))
	} else if unmarshalLenient(raw, &decoded) {
		for i, c := range decoded.Clauses {
			title := c.Title
			if title == "" {
				title = fmt.Sprintf("Section %d", i+1)
			}
			explanation := c.Explanation
			if explanation == "" {
				explanation = "Review this clause carefully"
			}
			clauses = append(clauses, models.Clause{
				ID:           fmt.Sprintf("c%d", i+1),
				Title:        title,
				Section:      c.Section,
				OriginalText: "",
				Explanation:  explanation,
				Implications: generateImplications(title),
				ActionItems:  generateActionItems(title, c.Importance),
				Importance:   c.Importance,
			})
		}
	} else {
		s.log.Warn("Clauses response was not valid JSON, returning no clauses")
	}

	return &models.Analysis{
		Summary: models.Summary{
			DocumentType:     summary.DocumentType,
			KeyPoints:        summary.KeyPoints,
			Benefits:         summary.Benefits,
			Risks:            summary.Risks,
			ImportantDates:   dates,
			FinancialTerms:   money,
			OverallRiskLevel: summary.OverallRiskLevel,
		},
		Clauses: clauses,
	}
}

func (s *Service) analyzeMapReduce(ctx context.Context, text, docTypeHint string) *models.Analysis {
	chunks := ChunkText(text, s.opts.ChunkSize)
	partials := make([]models.PartialAnalysis, 0, len(chunks))
	for i, chunk := range chunks {
		partials = append(partials, s.analyzeChunk(ctx, chunk, docTypeHint, i+1, len(chunks)))
	}
	return s.mergePartials(ctx, partials, docTypeHint)
}

// analyzeChunk runs the per-chunk analysis prompt, substituting an empty
// partial on any failure so one bad chunk never sinks the merge.
func (s *Service) analyzeChunk(ctx context.Context, chunk, docTypeHint string, index, total int) models.PartialAnalysis {
	var partial models.PartialAnalysis
	raw, err := s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeChunk,
		System:      documentSystemInstruction(docTypeHint),
		Prompt:      chunkPrompt(chunk, index, total),
		Schema:      chunkSchema(),
		Temperature: 0.15,
		TopK:        32,
		TopP:        0.9,
		MaxTokens:   chunkMaxTokens,
	})
	if err != nil {
		s.log.Warn(fmt.Sprintf("Chunk %d/%d completion failed, using empty partial: %v", index, total, err))
		return models.PartialAnalysis{}
	}
	if !unmarshalLenient(raw, &partial) {
		s.log.Warn(fmt.Sprintf("Chunk %d/%d response was not valid JSON, using empty partial", index, total))
		return models.PartialAnalysis{}
	}
	return partial
}

// mergePartials feeds the partial analyses back to the model in two reduce
// prompts: one for the summary fields, one for the clauses. Partials are
// serialized in chunk order so the merge is deterministic with respect to
// chunk order.
func (s *Service) mergePartials(ctx context.Context, partials []models.PartialAnalysis, docTypeHint string) *models.Analysis {
	summaryOnly := make([]models.PartialAnalysis, len(partials))
	clausesOnly := make([]struct {
		Clauses []models.Clause `json:"clauses"`
	}, len(partials))
	for i, p := range partials {
		summaryOnly[i] = models.PartialAnalysis{
			KeyPoints:      p.KeyPoints,
			Benefits:       p.Benefits,
			Risks:          p.Risks,
			ImportantDates: p.ImportantDates,
			FinancialTerms: p.FinancialTerms,
		}
		clausesOnly[i].Clauses = p.Clauses
	}
	summaryJSON, _ := json.Marshal(summaryOnly)
	clausesJSON, _ := json.Marshal(clausesOnly)

	var summary models.Summary
	raw, err := s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeSummary,
		System:      documentSystemInstruction(docTypeHint),
		Prompt:      mergeSummaryPrompt(string(summaryJSON)),
		Schema:      mergeSummarySchema(),
		Temperature: 0.15,
		TopK:        32,
		TopP:        0.9,
		MaxTokens:   mergeSummaryMaxTokens,
	})
	if err != nil || !unmarshalLenient(raw, &summary) {
		if err != nil {
			s.log.Warn(fmt.Sprintf("Summary merge failed, using fallback: %v", err))
		} else {
			s.log.Warn("Summary merge response was not valid JSON, using fallback")
		}
		docType := docTypeHint
		if docType == "" {
			docType = "Auto-detected"
		}
		summary = models.Summary{DocumentType: docType, OverallRiskLevel: models.LevelMedium}
	}

	var clauses []models.Clause
	var decoded struct {
		Clauses []models.Clause `json:"clauses"`
	}
	raw, err = s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeSummary,
		System:      documentSystemInstruction(docTypeHint),
		Prompt:      mergeClausesPrompt(string(clausesJSON)),
		Schema:      mergeClausesSchema(),
		Temperature: 0.15,
		TopK:        32,
		TopP:        0.9,
		MaxTokens:   mergeClausesMaxTokens,
	})
	if err != nil {
		s.log.Warn(fmt.Sprintf("Clauses merge failed, returning no clauses: %v", err))
	} else if unmarshalLenient(raw, &decoded) {
		clauses = decoded.Clauses
	} else {
		s.log.Warn("Clauses merge response was not valid JSON, returning no clauses")
	}

	return &models.Analysis{Summary: summary, Clauses: clauses}
}

func fallbackSummary(docTypeHint string) singlePassSummary {
	docType := docTypeHint
	if docType == "" {
		docType = "Legal Document"
	}
	return singlePassSummary{
		DocumentType:     docType,
		KeyPoints:        []string{"Document uploaded", "Analysis pending", "Review required"},
		Risks:            []string{"Unable to analyze", "Manual review needed"},
		Benefits:         []string{"Document received"},
		OverallRiskLevel: models.LevelMedium,
	}
}

// generateImplications synthesizes up to two implications from the clause
// title via keyword-matched templates.
func generateImplications(title string) []string {
	lower := strings.ToLower(title)
	var implications []string
	if strings.Contains(lower, "liability") || strings.Contains(lower, "limitation") {
		implications = append(implications, "You may have limited recourse if issues arise")
	}
	if strings.Contains(lower, "termination") || strings.Contains(lower, "cancellation") {
		implications = append(implications, "Understand the notice period and penalties")
	}
	if strings.Contains(lower, "payment") || strings.Contains(lower, "fee") {
		implications = append(implications, "Budget for all stated costs and potential fees")
	}
	if strings.Contains(lower, "confidential") {
		implications = append(implications, "Information sharing may be restricted")
	}
	if strings.Contains(lower, "dispute") || strings.Contains(lower, "arbitration") {
		implications = append(implications, "Legal options may be limited to specific venues")
	}
	if len(implications) > 2 {
		implications = implications[:2]
	}
	return implications
}

// generateActionItems synthesizes up to two action items from the clause
// title and importance.
func generateActionItems(title, importance string) []string {
	lower := strings.ToLower(title)
	var actions []string
	if importance == models.LevelHigh {
		actions = append(actions, "Review this clause with extra attention")
	}
	if strings.Contains(lower, "payment") || strings.Contains(lower, "fee") {
		actions = append(actions, "Note all payment amounts and due dates")
	}
	if strings.Contains(lower, "termination") || strings.Contains(lower, "notice") {
		actions = append(actions, "Calendar important notice periods")
	}
	if strings.Contains(lower, "liability") || strings.Contains(lower, "indemnity") {
		actions = append(actions, "Consider if you need additional insurance")
	}
	if strings.Contains(lower, "confidential") {
		actions = append(actions, "Identify what information is covered")
	}
	if len(actions) > 2 {
		actions = actions[:2]
	}
	return actions
}

func capStrings(list []string, max int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > max {
		return list[:max]
	}
	return list
}

func capLabelValues(list []models.LabelValue, max int) []models.LabelValue {
	if list == nil {
		return []models.LabelValue{}
	}
	if len(list) > max {
		return list[:max]
	}
	return list
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) > max {
		words = words[:max]
	}
	return strings.Join(words, " ")
}

// normalizeAnalysis enforces the documented result invariants in place:
// every bounded list is truncated to its cap, enum fields are coerced to
// "medium" when invalid, clause ids default to their position, and
// originalText is always forced empty so final output never echoes source
// text verbatim.
func normalizeAnalysis(a *models.Analysis, docTypeHint string) {
	if a.Summary.DocumentType == "" {
		if docTypeHint != "" {
			a.Summary.DocumentType = docTypeHint
		} else {
			a.Summary.DocumentType = "Auto-detected"
		}
	}
	a.Summary.KeyPoints = capStrings(a.Summary.KeyPoints, 5)
	a.Summary.Benefits = capStrings(a.Summary.Benefits, 4)
	a.Summary.Risks = capStrings(a.Summary.Risks, 6)
	a.Summary.ImportantDates = capLabelValues(a.Summary.ImportantDates, 5)
	a.Summary.FinancialTerms = capLabelValues(a.Summary.FinancialTerms, 5)
	if !models.ValidLevel(a.Summary.OverallRiskLevel) {
		a.Summary.OverallRiskLevel = models.LevelMedium
	}

	if a.Clauses == nil {
		a.Clauses = []models.Clause{}
	}
	if len(a.Clauses) > 8 {
		a.Clauses = a.Clauses[:8]
	}
	for i := range a.Clauses {
		c := &a.Clauses[i]
		if c.ID == "" {
			c.ID = fmt.Sprintf("c%d", i+1)
		}
		if c.Title == "" {
			c.Title = fmt.Sprintf("Clause %d", i+1)
		}
		c.OriginalText = ""
		c.Explanation = truncateWords(c.Explanation, 40)
		c.Implications = capStrings(c.Implications, 2)
		c.ActionItems = capStrings(c.ActionItems, 2)
		if !models.ValidLevel(c.Importance) {
			c.Importance = models.LevelMedium
		}
	}
}
