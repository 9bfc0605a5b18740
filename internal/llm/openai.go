package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"clauselens/internal/config"
	"clauselens/internal/models"
)

// OpenAI implements CompletionService for OpenAI-compatible endpoints.
// Schema enforcement is weaker here than with Gemini: the client requests
// JSON-object mode and relies on the caller's normalization for bounds.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI-backed completion client.
func NewOpenAI(cfg config.OpenAIConfig, timeout time.Duration) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is not configured")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
	}, nil
}

// Complete sends one chat completion request and returns the raw text.
func (o *OpenAI) Complete(ctx context.Context, req *Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: int(req.MaxTokens),
	}
	if req.Temperature > 0 {
		temperature := req.Temperature
		chatReq.Temperature = &temperature
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ CompletionService = (*OpenAI)(nil)
