package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"clauselens/internal/llm"
	"clauselens/internal/models"
	"clauselens/pkg/logger"
)

// scriptedLLM returns canned responses in call order and records requests.
type scriptedLLM struct {
	responses []string
	err       error
	requests  []*llm.Request
}

func (s *scriptedLLM) Complete(_ context.Context, req *llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.responses) {
		return "", fmt.Errorf("unexpected call %d", i+1)
	}
	return s.responses[i], nil
}

func testService(client llm.CompletionService) *Service {
	return New(client, logger.New("test", ""))
}

const testDoc = "The tenant shall pay $2,000 monthly. Termination requires notice within 30 days."

func TestAnalyzeMalformedResponsesProduceFallback(t *testing.T) {
	client := &scriptedLLM{responses: []string{"not json at all", "still not json"}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	if got.Summary.DocumentType != "Legal Document" {
		t.Errorf("Expected fallback document type, got %q", got.Summary.DocumentType)
	}
	if got.Summary.OverallRiskLevel != models.LevelMedium {
		t.Errorf("Expected fallback risk level medium, got %q", got.Summary.OverallRiskLevel)
	}
	if len(got.Summary.KeyPoints) == 0 {
		t.Error("Expected fallback key points to be present")
	}
	if got.Clauses == nil {
		t.Error("Expected clauses to be an empty slice, not nil")
	}
	if len(got.Clauses) != 0 {
		t.Errorf("Expected no clauses from a malformed response, got %d", len(got.Clauses))
	}
}

func TestAnalyzeExtractsDatesAndMoneyDeterministically(t *testing.T) {
	client := &scriptedLLM{responses: []string{"garbage", "garbage"}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	if len(got.Summary.FinancialTerms) == 0 {
		t.Fatal("Expected financial terms from the regex extractor despite model failure")
	}
	if got.Summary.FinancialTerms[0].Value != "$2,000" {
		t.Errorf("Expected $2,000 extracted, got %q", got.Summary.FinancialTerms[0].Value)
	}
	if len(got.Summary.ImportantDates) == 0 {
		t.Error("Expected the 'within 30 days' timeline to be extracted")
	}
}

func TestAnalyzeCoercesInvalidRiskLevel(t *testing.T) {
	summary := `{"documentType":"Lease","keyPoints":["a"],"risks":["b"],"benefits":["c"],"overallRiskLevel":"urgent"}`
	clauses := `{"clauses":[{"title":"Payment Terms","section":"2","explanation":"Pay monthly","importance":"catastrophic"}]}`
	client := &scriptedLLM{responses: []string{summary, clauses}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	if got.Summary.OverallRiskLevel != models.LevelMedium {
		t.Errorf("Expected invalid risk level coerced to medium, got %q", got.Summary.OverallRiskLevel)
	}
	if got.Clauses[0].Importance != models.LevelMedium {
		t.Errorf("Expected invalid importance coerced to medium, got %q", got.Clauses[0].Importance)
	}
}

func TestAnalyzeCapsClausesPreservingOrder(t *testing.T) {
	var items []string
	for i := 1; i <= 12; i++ {
		items = append(items, fmt.Sprintf(`{"title":"Clause number %d","section":"%d","explanation":"e","importance":"low"}`, i, i))
	}
	clauses := `{"clauses":[` + strings.Join(items, ",") + `]}`
	client := &scriptedLLM{responses: []string{"garbage", clauses}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	if len(got.Clauses) != 8 {
		t.Fatalf("Expected clauses capped at 8, got %d", len(got.Clauses))
	}
	for i, c := range got.Clauses {
		if want := fmt.Sprintf("Clause number %d", i+1); c.Title != want {
			t.Errorf("Expected clause %d titled %q, got %q", i, want, c.Title)
		}
		if want := fmt.Sprintf("c%d", i+1); c.ID != want {
			t.Errorf("Expected clause id %q, got %q", want, c.ID)
		}
	}
}

func TestAnalyzeAcceptsFencedJSON(t *testing.T) {
	summary := "```json\n" + `{"documentType":"NDA","keyPoints":["k"],"risks":[],"benefits":[],"overallRiskLevel":"low"}` + "\n```"
	client := &scriptedLLM{responses: []string{summary, "garbage"}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	if got.Summary.DocumentType != "NDA" {
		t.Errorf("Expected fenced JSON to be accepted, got document type %q", got.Summary.DocumentType)
	}
	if got.Summary.OverallRiskLevel != models.LevelLow {
		t.Errorf("Expected risk level low, got %q", got.Summary.OverallRiskLevel)
	}
}

func TestAnalyzeClearsOriginalTextAndTrimsExplanations(t *testing.T) {
	longExplanation := strings.Repeat("word ", 60)
	clauses := fmt.Sprintf(`{"clauses":[{"title":"Liability Cap","section":"9","explanation":"%s","importance":"high"}]}`,
		strings.TrimSpace(longExplanation))
	client := &scriptedLLM{responses: []string{"garbage", clauses}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	c := got.Clauses[0]
	if c.OriginalText != "" {
		t.Errorf("Expected originalText forced empty, got %q", c.OriginalText)
	}
	if n := len(strings.Fields(c.Explanation)); n > 40 {
		t.Errorf("Expected explanation capped at 40 words, got %d", n)
	}
}

func TestAnalyzeSynthesizesImplicationsAndActions(t *testing.T) {
	clauses := `{"clauses":[{"title":"Termination and Fees","section":"7","explanation":"e","importance":"high"}]}`
	client := &scriptedLLM{responses: []string{"garbage", clauses}}
	got := testService(client).Analyze(context.Background(), testDoc, "")

	c := got.Clauses[0]
	if len(c.Implications) == 0 || len(c.Implications) > 2 {
		t.Fatalf("Expected 1-2 synthesized implications, got %v", c.Implications)
	}
	if len(c.ActionItems) != 2 {
		t.Fatalf("Expected 2 action items for a high-importance clause, got %v", c.ActionItems)
	}
	if c.ActionItems[0] != "Review this clause with extra attention" {
		t.Errorf("Expected the high-importance action first, got %q", c.ActionItems[0])
	}
}

func TestAnalyzeMapReduceBranch(t *testing.T) {
	chunkResp := `{"keyPoints":["chunk point"],"benefits":[],"risks":["chunk risk"],"importantDates":[],"financialTerms":[],"clauses":[{"id":"c1","title":"Deposit","section":"3","explanation":"e","importance":"medium"}]}`
	mergedSummary := `{"documentType":"Lease","keyPoints":["merged"],"benefits":[],"risks":["merged risk"],"importantDates":[],"financialTerms":[],"overallRiskLevel":"high"}`
	mergedClauses := `{"clauses":[{"id":"c1","title":"Deposit","section":"3","explanation":"e","importance":"medium"}]}`

	client := &scriptedLLM{responses: []string{chunkResp, chunkResp, mergedSummary, mergedClauses}}
	opts := DefaultOptions()
	opts.SinglePassLimit = 40
	opts.ChunkSize = 70
	svc := NewWithOptions(client, logger.New("test", ""), opts)

	text := strings.Repeat("The tenant pays a deposit and late fee penalties apply monthly. ", 2)
	got := svc.Analyze(context.Background(), text, "Lease")

	if len(client.requests) != 4 {
		t.Fatalf("Expected 2 chunk calls plus 2 merge calls, got %d", len(client.requests))
	}
	if client.requests[0].Purpose != llm.PurposeChunk {
		t.Errorf("Expected first call to use the chunk model, got %q", client.requests[0].Purpose)
	}
	if got.Summary.DocumentType != "Lease" {
		t.Errorf("Expected merged document type, got %q", got.Summary.DocumentType)
	}
	if got.Summary.OverallRiskLevel != models.LevelHigh {
		t.Errorf("Expected merged risk level high, got %q", got.Summary.OverallRiskLevel)
	}
	if len(got.Clauses) != 1 || got.Clauses[0].Title != "Deposit" {
		t.Errorf("Expected merged clauses, got %+v", got.Clauses)
	}
}

func TestAnalyzeNormalizesCarriageReturnInput(t *testing.T) {
	// A large document with CRLF paragraph breaks. Without normalization
	// the blank-line splitter sees one paragraph bigger than the selection
	// budget and the prompt goes out empty.
	var paragraphs []string
	for i := 0; i < 1000; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d covers the termination fee and a $%d00 penalty.", i, i+1))
	}
	text := strings.Join(paragraphs, "\r\n\r\n")
	if len(text) <= DefaultOptions().MaxSelectChars {
		t.Fatal("test document must exceed the selection budget")
	}

	client := &scriptedLLM{responses: []string{"garbage", "garbage"}}
	testService(client).Analyze(context.Background(), text, "")

	prompt := client.requests[0].Prompt
	if !strings.Contains(prompt, "Paragraph 0 covers") {
		t.Error("Expected selected paragraphs in the summary prompt")
	}
	if strings.Contains(prompt, "\r") {
		t.Error("Expected carriage returns stripped before selection")
	}
	if len(prompt) < minSelectedChars {
		t.Errorf("Expected a substantial selection in the prompt, got %d chars", len(prompt))
	}
}

func TestAnalyzeMapReduceSurvivesBadChunk(t *testing.T) {
	mergedSummary := `{"documentType":"Lease","overallRiskLevel":"medium"}`
	client := &scriptedLLM{responses: []string{"garbage", "garbage", mergedSummary, "garbage"}}
	opts := DefaultOptions()
	opts.SinglePassLimit = 40
	opts.ChunkSize = 70
	svc := NewWithOptions(client, logger.New("test", ""), opts)

	text := strings.Repeat("The tenant pays a deposit and late fee penalties apply monthly. ", 2)
	got := svc.Analyze(context.Background(), text, "Lease")

	if got == nil {
		t.Fatal("Expected a result despite chunk failures")
	}
	if got.Summary.DocumentType != "Lease" {
		t.Errorf("Expected document type from the merge, got %q", got.Summary.DocumentType)
	}
	if got.Clauses == nil || len(got.Clauses) != 0 {
		t.Errorf("Expected an empty clause slice, got %v", got.Clauses)
	}
}
