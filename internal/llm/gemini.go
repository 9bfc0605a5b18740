package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"clauselens/internal/config"
)

// Gemini implements CompletionService on top of the Gemini API.
type Gemini struct {
	client       *genai.Client
	summaryModel string
	chunkModel   string
	chatModel    string
	timeout      time.Duration
}

// Legal documents routinely trip over-eager safety filters (liability,
// damages, penalties), so everything below BLOCK_ONLY_HIGH is let through.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
}

// NewGemini creates a Gemini-backed completion client.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	g := &Gemini{
		client:       client,
		summaryModel: cfg.Model,
		chunkModel:   cfg.ChunkModel,
		chatModel:    cfg.ChatModel,
		timeout:      timeout,
	}
	if g.summaryModel == "" {
		g.summaryModel = "gemini-2.0-flash"
	}
	if g.chunkModel == "" {
		g.chunkModel = g.summaryModel
	}
	if g.chatModel == "" {
		g.chatModel = g.summaryModel
	}
	return g, nil
}

// Complete sends one prompt to the Gemini API and returns the raw response
// text. Each call configures a fresh GenerativeModel so concurrent requests
// never share sampling state.
func (g *Gemini) Complete(ctx context.Context, req *Request) (string, error) {
	model := g.client.GenerativeModel(g.modelFor(req.Purpose))
	model.SetCandidateCount(1)
	model.SetTemperature(req.Temperature)
	if req.TopK > 0 {
		model.SetTopK(req.TopK)
	}
	if req.TopP > 0 {
		model.SetTopP(req.TopP)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	model.SafetySettings = safetySettings

	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Schema != nil {
		model.GenerationConfig.ResponseMIMEType = "application/json"
		model.GenerationConfig.ResponseSchema = toGenaiSchema(req.Schema)
	}

	cs := model.StartChat()
	for _, turn := range req.History {
		cs.History = append(cs.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := cs.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	return responseText(resp)
}

func (g *Gemini) modelFor(p Purpose) string {
	switch p {
	case PurposeChunk:
		return g.chunkModel
	case PurposeChat:
		return g.chatModel
	default:
		return g.summaryModel
	}
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", errors.New("gemini returned no text parts")
	}
	return out, nil
}

// toGenaiSchema converts the provider-neutral schema to the genai form.
func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Enum:     s.Enum,
		Required: s.Required,
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	default:
		out.Type = genai.TypeString
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

var _ CompletionService = (*Gemini)(nil)
