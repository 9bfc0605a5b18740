package llm

import (
	"context"
	"fmt"
	"time"

	"clauselens/internal/config"
	"clauselens/internal/models"
)

// Purpose selects which configured model a completion call runs on. The
// per-chunk model is typically a faster, cheaper one than the summary model.
type Purpose string

const (
	PurposeSummary Purpose = "summary"
	PurposeChunk   Purpose = "chunk"
	PurposeChat    Purpose = "chat"
)

// Schema is a provider-neutral JSON response schema. Each client converts it
// to its provider's native representation, or falls back to JSON-object mode
// when the provider has no schema support.
type Schema struct {
	Type       string
	Properties map[string]*Schema
	Items      *Schema
	Enum       []string
	Required   []string
}

// Schema type names.
const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

// Request describes one completion call: a prompt plus the constraints the
// caller needs honored (schema, token budget, sampling settings).
type Request struct {
	Purpose     Purpose
	System      string
	Prompt      string
	History     []models.ChatTurn
	Schema      *Schema // JSON output expected when set
	Temperature float32
	TopK        int32
	TopP        float32
	MaxTokens   int32
}

// CompletionService is the external LLM endpoint. It returns the raw response
// text; parsing and fallback policy belong to the caller, which treats the
// model as unreliable-by-default.
type CompletionService interface {
	Complete(ctx context.Context, req *Request) (string, error)
}

const defaultTimeout = 45 * time.Second

// NewClient is a factory that builds the configured completion client.
// A missing API key is a fatal configuration error: it must fail here,
// before any request is attempted.
func NewClient(ctx context.Context, cfg config.LLMConfig) (CompletionService, error) {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini, timeout)
	case "openai":
		return NewOpenAI(cfg.OpenAI, timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
