package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealcart/internal/ghost"
	"mealcart/internal/llm"
	"mealcart/internal/recipe"
)

// --- Mocks ---
type MockGhostClient struct {
	CreatedPost *ghost.Post
	ShouldError bool
}

func (m *MockGhostClient) FetchRecipes(ctx context.Context) ([]ghost.Post, error) {
	return nil, nil
}

func (m *MockGhostClient) CreatePost(ctx context.Context, title, html string, publish bool) (*ghost.Post, error) {
	if m.ShouldError {
		return nil, fmt.Errorf("mock error")
	}
	m.CreatedPost = &ghost.Post{ID: "123", Title: title, HTML: html}
	return m.CreatedPost, nil
}

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response}, nil
}

type MockRecipeSaver struct {
	Saved []recipe.Recipe
}

func (m *MockRecipeSaver) Save(ctx context.Context, rec recipe.Recipe) error {
	m.Saved = append(m.Saved, rec)
	return nil
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads"><p>Buy stuff!</p></div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer><p>Copyright 2024</p></footer>
			</body>
		</html>`))
	}))
	defer ts.Close()

	c := NewClipper(nil, nil, nil)

	cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Error("Expected to find body content")
	}
}

func TestFormatToHTML(t *testing.T) {
	rec := recipe.Recipe{
		Title:        "Pancakes",
		Ingredients:  []*recipe.RawIngredient{recipe.NewRawIngredient("Flour", "1 cup"), nil, {Amount: nil}},
		Instructions: []string{"Mix", "Fry"},
		PrepTime:     "10m",
		Servings:     "2",
	}

	html := formatToHTML(rec, "http://test.com")

	expectedSubstrings := []string{
		"Imported from: <a href=\"http://test.com\">http://test.com</a>",
		"<li>1 cup Flour</li>",
		"<li>Mix</li>",
		"<strong>Prep Time:</strong> 10m",
	}
	for _, sub := range expectedSubstrings {
		if !strings.Contains(html, sub) {
			t.Errorf("Expected HTML to contain '%s'", sub)
		}
	}
}

func TestClipURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Some Content</p></body></html>"))
	}))
	defer ts.Close()

	aiResponse := `{"title": "Mock Pie", "ingredients": [{"name": "Apple", "amount": "3"}], "instructions": ["Bake"], "prep_time": "1h", "servings": "8"}`

	t.Run("Success", func(t *testing.T) {
		mockGhost := &MockGhostClient{}
		mockAI := &MockTextGenerator{Response: aiResponse}
		saver := &MockRecipeSaver{}
		c := NewClipper(recipe.NewExtractor(mockAI), saver, mockGhost)

		rec, meta, err := c.ClipURL(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("ClipURL failed: %v", err)
		}
		if rec.Title != "Mock Pie" {
			t.Errorf("Expected title 'Mock Pie', got '%s'", rec.Title)
		}
		if !strings.HasPrefix(rec.ID, "clip-") {
			t.Errorf("Expected a clip ID, got '%s'", rec.ID)
		}
		if meta.AgentName != "Extractor" {
			t.Errorf("Expected extractor meta, got %+v", meta)
		}
		if !strings.Contains(mockAI.Prompt, "Some Content") {
			t.Error("Expected cleaned page content in the prompt")
		}
		if len(saver.Saved) != 1 || saver.Saved[0].ID != rec.ID {
			t.Fatalf("Expected the recipe to be saved once, got %+v", saver.Saved)
		}
		if mockGhost.CreatedPost == nil {
			t.Fatal("Expected Ghost CreatePost to be called")
		}
		if !strings.Contains(mockGhost.CreatedPost.HTML, "Apple") {
			t.Error("Expected HTML content to contain extracted ingredients")
		}
	})

	t.Run("StableID", func(t *testing.T) {
		if clipID(ts.URL) != clipID(" "+ts.URL+" ") {
			t.Error("Expected the same URL to map to the same recipe ID")
		}
	})

	t.Run("GhostFailureIsNotFatal", func(t *testing.T) {
		saver := &MockRecipeSaver{}
		c := NewClipper(recipe.NewExtractor(&MockTextGenerator{Response: aiResponse}), saver, &MockGhostClient{ShouldError: true})

		if _, _, err := c.ClipURL(context.Background(), ts.URL); err != nil {
			t.Fatalf("Expected clip to succeed without Ghost, got %v", err)
		}
		if len(saver.Saved) != 1 {
			t.Errorf("Expected the recipe to be saved, got %d saves", len(saver.Saved))
		}
	})

	t.Run("ExtractionError", func(t *testing.T) {
		saver := &MockRecipeSaver{}
		c := NewClipper(recipe.NewExtractor(&MockTextGenerator{ShouldError: true}), saver, nil)

		if _, _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected an error when extraction fails")
		}
		if len(saver.Saved) != 0 {
			t.Error("Expected nothing to be saved")
		}
	})
}
