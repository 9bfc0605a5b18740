package analyzer

import (
	"fmt"
	"strings"

	"clauselens/internal/llm"
	"clauselens/internal/models"
)

// Input truncation budgets per prompt kind, in characters.
const (
	summaryInputChars = 30000
	clausesInputChars = 25000
	chunkInputChars   = 60000
	mergeInputChars   = 100000
)

// Output token budgets. Small schemas under tight budgets keep the model from
// truncating or malforming its JSON; this is why summary and clauses are two
// separate calls rather than one combined schema.
const (
	summaryMaxTokens      = 400
	clausesMaxTokens      = 600
	chunkMaxTokens        = 1400
	mergeSummaryMaxTokens = 1000
	mergeClausesMaxTokens = 1200
)

func levelEnum() []string {
	return []string{models.LevelLow, models.LevelMedium, models.LevelHigh}
}

func labelValueSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"label": {Type: llm.TypeString},
			"value": {Type: llm.TypeString},
		},
	}
}

func stringArraySchema() *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}}
}

// singleSummarySchema bounds the single-pass summary call: documentType,
// a handful of key points, risks, benefits, and a risk level.
func singleSummarySchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"documentType":     {Type: llm.TypeString},
			"keyPoints":        stringArraySchema(),
			"risks":            stringArraySchema(),
			"benefits":         stringArraySchema(),
			"overallRiskLevel": {Type: llm.TypeString, Enum: levelEnum()},
		},
		Required: []string{"documentType", "keyPoints", "risks", "overallRiskLevel"},
	}
}

// singleClausesSchema bounds the single-pass clause call to bare clause
// seeds; implications and action items are synthesized locally.
func singleClausesSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"clauses": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"title":       {Type: llm.TypeString},
						"section":     {Type: llm.TypeString},
						"explanation": {Type: llm.TypeString},
						"importance":  {Type: llm.TypeString, Enum: levelEnum()},
					},
					Required: []string{"title", "explanation", "importance"},
				},
			},
		},
		Required: []string{"clauses"},
	}
}

func fullClauseSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"title":        {Type: llm.TypeString},
			"section":      {Type: llm.TypeString},
			"explanation":  {Type: llm.TypeString},
			"implications": stringArraySchema(),
			"actionItems":  stringArraySchema(),
			"importance":   {Type: llm.TypeString, Enum: levelEnum()},
		},
	}
}

// chunkSchema is the per-chunk partial analysis: every field, all arrays
// unbounded. Bounding happens at merge.
func chunkSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"keyPoints":      stringArraySchema(),
			"benefits":       stringArraySchema(),
			"risks":          stringArraySchema(),
			"importantDates": {Type: llm.TypeArray, Items: labelValueSchema()},
			"financialTerms": {Type: llm.TypeArray, Items: labelValueSchema()},
			"clauses":        {Type: llm.TypeArray, Items: fullClauseSchema()},
		},
	}
}

// mergeSummarySchema is the final summary shape for the reduce step.
func mergeSummarySchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"documentType":     {Type: llm.TypeString},
			"keyPoints":        stringArraySchema(),
			"benefits":         stringArraySchema(),
			"risks":            stringArraySchema(),
			"importantDates":   {Type: llm.TypeArray, Items: labelValueSchema()},
			"financialTerms":   {Type: llm.TypeArray, Items: labelValueSchema()},
			"overallRiskLevel": {Type: llm.TypeString, Enum: levelEnum()},
		},
		Required: []string{"documentType", "keyPoints", "risks", "overallRiskLevel"},
	}
}

func mergeClausesSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"clauses": {Type: llm.TypeArray, Items: fullClauseSchema()},
		},
		Required: []string{"clauses"},
	}
}

// analyzerSystemInstruction is the persona for the tightly-budgeted
// single-pass calls.
const analyzerSystemInstruction = "You are a legal document analyzer. Be extremely concise. Output valid JSON only."

// documentSystemInstruction is the persona for chunk and merge calls, with an
// optional document-type hint appended.
func documentSystemInstruction(docTypeHint string) string {
	base := `You are a helpful assistant that explains legal documents in clear, plain English.
- Be concise, neutral, and practical.
- Identify risky clauses and explain why in simple terms.
- Include brief actionable suggestions where appropriate.
- Use short labels for dates and financial terms.
- Do not provide legal advice; include no disclaimers in the JSON.`
	if docTypeHint != "" {
		return base + "\nDocument type hint: " + docTypeHint + "."
	}
	return base
}

func summaryPrompt(text string) string {
	return strings.Join([]string{
		"Extract from this legal document:",
		"- documentType (guess if needed)",
		"- 3 keyPoints (each max 10 words)",
		"- 3 risks (each max 10 words)",
		"- 2 benefits (each max 10 words)",
		"- overallRiskLevel (low/medium/high)",
		"Output JSON matching the schema. Nothing else.",
		"Text snippet:",
		truncate(text, summaryInputChars),
	}, "\n")
}

func clausesPrompt(text string) string {
	return strings.Join([]string{
		"Extract 3-5 important clauses from this legal document.",
		"For each clause provide:",
		"- title: descriptive name (max 5 words)",
		`- section: section number if visible (e.g. "Section 4.2" or "Article III")`,
		"- explanation: what this clause means in plain English (max 25 words)",
		"- importance: high/medium/low",
		"Output valid JSON only.",
		"Text:",
		truncate(text, clausesInputChars),
	}, "\n")
}

func chunkPrompt(chunk string, index, total int) string {
	return strings.Join([]string{
		fmt.Sprintf("You are analyzing part %d of %d of a legal document.", index, total),
		"Extract: keyPoints, benefits, risks, importantDates (label,value), financialTerms (label,value), clauses[] (title, section, explanation, implications[], actionItems[], importance).",
		"Keep everything concise. No long quotes.",
		"Return only JSON.",
		"Text:",
		`"""`,
		truncate(chunk, chunkInputChars),
		`"""`,
	}, "\n")
}

func mergeSummaryPrompt(partialsJSON string) string {
	return strings.Join([]string{
		"Merge these partial analyses into a single summary.",
		"Return JSON with ONLY summary fields (no clauses).",
		"Limits: keyPoints <= 5, risks <= 6, benefits <= 4, financialTerms <= 5, importantDates <= 5",
		"Deduplicate and keep most important items.",
		"Partials:",
		`"""`,
		truncate(partialsJSON, mergeInputChars),
		`"""`,
	}, "\n")
}

func mergeClausesPrompt(partialsJSON string) string {
	return strings.Join([]string{
		"Merge these partial clause analyses.",
		`Return JSON with ONLY "clauses" array.`,
		"Keep up to 6 most important clauses. Deduplicate.",
		"Each clause: title, explanation (max 30 words), importance",
		"Partials:",
		`"""`,
		truncate(partialsJSON, mergeInputChars),
		`"""`,
	}, "\n")
}
