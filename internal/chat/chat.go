package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clauselens/internal/llm"
	"clauselens/internal/models"
	"clauselens/pkg/logger"
)

const answerMaxTokens = 1024

// Service answers free-form questions about an already-produced Analysis,
// grounding each turn with a narrow context card and a trimmed conversation
// history.
type Service struct {
	llm llm.CompletionService
	log *logger.Logger
}

// New creates a chat Service around the injected completion client.
func New(client llm.CompletionService, log *logger.Logger) *Service {
	return &Service{llm: client, log: log}
}

func replySchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"answer": {Type: llm.TypeString},
			"references": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"clauseId": {Type: llm.TypeString},
						"section":  {Type: llm.TypeString},
						"title":    {Type: llm.TypeString},
					},
				},
			},
			"suggestedQuestions": {
				Type:  llm.TypeArray,
				Items: &llm.Schema{Type: llm.TypeString},
			},
		},
		Required: []string{"answer"},
	}
}

// DefaultSuggestions are offered when the model supplies none.
func DefaultSuggestions() []string {
	return []string{
		"What are the main risks in this document?",
		"Which clauses should I pay attention to?",
		"Explain the termination clause in simple terms.",
		"Are there hidden fees or penalties?",
		"What deadlines do I need to track?",
	}
}

// Answer runs one grounded chat turn. A response that is not valid JSON is
// not an error: the raw text becomes the answer and the default suggestions
// are substituted. The returned reply always has non-nil reference and
// suggestion slices.
func (s *Service) Answer(ctx context.Context, message string, analysis *models.Analysis, history []models.ChatTurn) (*models.ChatReply, error) {
	narrow := BuildNarrowContext(message, analysis)
	narrowJSON, err := json.Marshal(narrow)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize context card: %w", err)
	}

	prompt := strings.Join([]string{
		"Use ONLY this context to answer. If insufficient, say so.",
		"Context:",
		string(narrowJSON),
		"Question: " + message,
		"Answer briefly in plain English.",
	}, "\n")

	raw, err := s.llm.Complete(ctx, &llm.Request{
		Purpose:     llm.PurposeChat,
		System:      buildSystemInstruction(analysis),
		Prompt:      prompt,
		History:     trimHistory(history),
		Schema:      replySchema(),
		Temperature: 0.3,
		TopK:        32,
		TopP:        0.95,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var parsed models.ChatReply
	if json.Unmarshal([]byte(raw), &parsed) != nil || parsed.Answer == "" {
		s.log.Warn("Chat response was not valid JSON, falling back to raw text answer")
		parsed = models.ChatReply{Answer: raw, SuggestedQuestions: DefaultSuggestions()}
	}
	if parsed.References == nil {
		parsed.References = []models.Reference{}
	}
	if parsed.SuggestedQuestions == nil {
		parsed.SuggestedQuestions = []string{}
	}
	return &parsed, nil
}
