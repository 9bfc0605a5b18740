package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clauselens/internal/llm"
	"clauselens/internal/models"
	"clauselens/pkg/logger"
)

type stubLLM struct {
	response string
	err      error
	lastReq  *llm.Request
}

func (s *stubLLM) Complete(_ context.Context, req *llm.Request) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func testAnalysis() *models.Analysis {
	return &models.Analysis{
		Summary: models.Summary{DocumentType: "Lease", OverallRiskLevel: models.LevelMedium},
		Clauses: []models.Clause{
			{ID: "c1", Title: "Termination", Section: "7", Explanation: "Either party may terminate", Importance: models.LevelHigh},
		},
	}
}

func TestAnswerParsesStructuredReply(t *testing.T) {
	client := &stubLLM{response: `{"answer":"Thirty days notice is required.","references":[{"clauseId":"c1","section":"7","title":"Termination"}],"suggestedQuestions":["What about fees?"]}`}
	svc := New(client, logger.New("test", ""))

	got, err := svc.Answer(context.Background(), "How do I terminate?", testAnalysis(), nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "Thirty days notice is required." {
		t.Errorf("Unexpected answer %q", got.Answer)
	}
	if len(got.References) != 1 || got.References[0].ClauseID != "c1" {
		t.Errorf("Expected one reference to c1, got %v", got.References)
	}
	if len(got.SuggestedQuestions) != 1 {
		t.Errorf("Expected the model's suggestions kept, got %v", got.SuggestedQuestions)
	}
}

func TestAnswerFallsBackToRawText(t *testing.T) {
	client := &stubLLM{response: "I could not produce JSON but here is your answer."}
	svc := New(client, logger.New("test", ""))

	got, err := svc.Answer(context.Background(), "question", testAnalysis(), nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != client.response {
		t.Errorf("Expected the raw text as the answer, got %q", got.Answer)
	}
	if len(got.SuggestedQuestions) != len(DefaultSuggestions()) {
		t.Errorf("Expected default suggestions on a parse failure, got %v", got.SuggestedQuestions)
	}
	if got.References == nil {
		t.Error("Expected a non-nil references slice")
	}
}

func TestAnswerKeepsEmptySuggestionsWhenJSONParses(t *testing.T) {
	client := &stubLLM{response: `{"answer":"Yes."}`}
	svc := New(client, logger.New("test", ""))

	got, err := svc.Answer(context.Background(), "question", testAnalysis(), nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.SuggestedQuestions) != 0 {
		t.Errorf("Expected no substituted suggestions for valid JSON, got %v", got.SuggestedQuestions)
	}
	if got.SuggestedQuestions == nil || got.References == nil {
		t.Error("Expected non-nil empty slices")
	}
}

func TestAnswerPropagatesCompletionError(t *testing.T) {
	client := &stubLLM{err: errors.New("upstream unavailable")}
	svc := New(client, logger.New("test", ""))

	if _, err := svc.Answer(context.Background(), "question", testAnalysis(), nil); err == nil {
		t.Fatal("Expected an error when the completion call fails")
	}
}

func TestAnswerGroundsPromptInContext(t *testing.T) {
	client := &stubLLM{response: `{"answer":"ok"}`}
	svc := New(client, logger.New("test", ""))

	history := []models.ChatTurn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleModel, Content: "earlier answer"},
	}
	if _, err := svc.Answer(context.Background(), "How do I terminate?", testAnalysis(), history); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	req := client.lastReq
	if req.Purpose != llm.PurposeChat {
		t.Errorf("Expected the chat model, got %q", req.Purpose)
	}
	if !strings.Contains(req.Prompt, "Termination") {
		t.Error("Expected the relevant clause in the context card")
	}
	if !strings.Contains(req.System, "documentType: Lease") {
		t.Error("Expected the document context serialized into the system instruction")
	}
	if len(req.History) != 2 {
		t.Errorf("Expected the trimmed history to be passed, got %d turns", len(req.History))
	}
}
