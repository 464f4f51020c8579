package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mealcart/internal/llm"
)

// mockTextGenerator is a mock implementation of llm.TextGenerator for testing.
type mockTextGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{
		Content: m.response,
		Usage:   llm.TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200, Model: "test-model"},
	}, nil
}

func TestExtractor_Extract(t *testing.T) {
	ctx := context.Background()
	post := PostData{
		ID:        "post-1",
		Title:     "Lemon Pasta",
		UpdatedAt: "2024-05-01T10:00:00Z",
		HTML:      "<h1>Lemon Pasta</h1><ul><li>200g spaghetti</li></ul>",
	}

	t.Run("Success", func(t *testing.T) {
		gen := &mockTextGenerator{response: `{
			"title": "Lemon Pasta",
			"ingredients": [{"name": "spaghetti", "amount": "200g"}, {"name": "lemon", "amount": "1"}],
			"instructions": ["Boil pasta.", "Add lemon."],
			"tags": ["italian"],
			"prep_time": "20 minutes",
			"servings": "2"
		}`}

		rec, meta, err := NewExtractor(gen).Extract(ctx, post)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.ID != "post-1" || rec.UpdatedAt != post.UpdatedAt {
			t.Errorf("Expected post ID and timestamp to be kept, got %s %s", rec.ID, rec.UpdatedAt)
		}
		if len(rec.Ingredients) != 2 || *rec.Ingredients[0].Name != "spaghetti" {
			t.Errorf("Expected 2 ingredients starting with spaghetti, got %+v", rec.Ingredients)
		}
		if meta.AgentName != "Extractor" || meta.Usage.TotalTokens != 200 {
			t.Errorf("Expected extractor meta with usage, got %+v", meta)
		}
		if !strings.Contains(gen.lastPrompt, post.HTML) || !strings.Contains(gen.lastPrompt, "Title: Lemon Pasta") {
			t.Errorf("Expected prompt to include the post, got %q", gen.lastPrompt)
		}
	})

	t.Run("FencedResponse", func(t *testing.T) {
		gen := &mockTextGenerator{response: "```json\n{\"ingredients\": []}\n```"}

		rec, _, err := NewExtractor(gen).Extract(ctx, post)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Title != "Lemon Pasta" {
			t.Errorf("Expected title to fall back to the post title, got '%s'", rec.Title)
		}
	})

	t.Run("LLMError", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		_, _, err := NewExtractor(&mockTextGenerator{err: boom}).Extract(ctx, post)
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped LLM error, got %v", err)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, meta, err := NewExtractor(&mockTextGenerator{response: "not json"}).Extract(ctx, post)
		if err == nil {
			t.Fatal("Expected an error for invalid JSON")
		}
		if meta.Usage.TotalTokens != 200 {
			t.Errorf("Expected usage to be reported on decode failure, got %+v", meta.Usage)
		}
	})
}
