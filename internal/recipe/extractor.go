package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"mealcart/internal/llm"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTemplate = template.Must(template.New("extractor").Parse(extractorPrompt))

// Extractor turns raw recipe posts into structured recipes using an LLM.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates a new Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// Extract asks the LLM for the structured form of data. The returned Recipe
// keeps the post's ID and UpdatedAt. Meta is filled in even when decoding the
// LLM output fails so token usage can still be recorded.
func (e *Extractor) Extract(ctx context.Context, data PostData) (Recipe, llm.AgentMeta, error) {
	start := time.Now()
	meta := llm.AgentMeta{AgentName: "Extractor"}

	prompt, err := buildExtractorPrompt(data)
	if err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to build extractor prompt: %w", err)
	}

	resp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to get LLM response: %w", err)
	}
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)

	var rec Recipe
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &rec); err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}

	rec.ID = data.ID
	rec.UpdatedAt = data.UpdatedAt
	if rec.Title == "" {
		rec.Title = data.Title
	}
	return rec, meta, nil
}

func buildExtractorPrompt(data PostData) (string, error) {
	var buf bytes.Buffer
	if err := extractorTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripCodeFence removes a surrounding ```json fence some models add despite
// the JSON response type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
