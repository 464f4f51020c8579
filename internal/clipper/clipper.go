package clipper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"mealcart/internal/ghost"
	"mealcart/internal/llm"
	"mealcart/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

// RecipeSaver persists clipped recipes. *recipe.Repository satisfies it.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Clipper fetches recipe pages, extracts a structured recipe and stores it.
type Clipper struct {
	extractor   *recipe.Extractor
	recipes     RecipeSaver
	ghostClient ghost.Client
	httpClient  *http.Client
}

// NewClipper creates a new Clipper. ghostClient may be nil, in which case
// clipped recipes are only stored locally.
func NewClipper(extractor *recipe.Extractor, recipes RecipeSaver, ghostClient ghost.Client) *Clipper {
	return &Clipper{
		extractor:   extractor,
		recipes:     recipes,
		ghostClient: ghostClient,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches url, extracts the recipe, saves it and, when Ghost is
// configured, publishes it as a post. A failed publish is logged and does not
// fail the clip.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, llm.AgentMeta, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, llm.AgentMeta{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, meta, err := c.extractor.Extract(ctx, recipe.PostData{
		ID:        clipID(url),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		HTML:      content,
	})
	if err != nil {
		return nil, meta, fmt.Errorf("failed to extract recipe: %w", err)
	}
	if rec.Title == "" {
		rec.Title = url
	}

	if err := c.recipes.Save(ctx, rec); err != nil {
		return nil, meta, fmt.Errorf("failed to save recipe: %w", err)
	}

	if c.ghostClient != nil {
		if _, err := c.ghostClient.CreatePost(ctx, rec.Title, formatToHTML(rec, url), true); err != nil {
			log.Printf("Warning: failed to publish clipped recipe %s to Ghost: %v", rec.ID, err)
		}
	}

	return &rec, meta, nil
}

// clipID derives a stable recipe ID from the source URL so clipping the same
// page twice updates one recipe.
func clipID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return "clip-" + hex.EncodeToString(sum[:6])
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, aside, form, .ads, #ads, .comments").Remove()

	var sb strings.Builder
	doc.Find("h1, h2, h3, p, li").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})
	if sb.Len() == 0 {
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}
	return sb.String(), nil
}

func formatToHTML(r recipe.Recipe, sourceURL string) string {
	var sb strings.Builder
	src := html.EscapeString(sourceURL)
	sb.WriteString(fmt.Sprintf("<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", src, src))

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.Ingredients {
		if ing == nil || ing.Name == nil {
			continue
		}
		line := *ing.Name
		if ing.Amount != nil && *ing.Amount != "" {
			line = *ing.Amount + " " + line
		}
		sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(line)))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol>")
	for _, step := range r.Instructions {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(step)))
	}
	sb.WriteString("</ol>")

	sb.WriteString("<hr>")
	sb.WriteString(fmt.Sprintf("<p><strong>Prep Time:</strong> %s | <strong>Servings:</strong> %s</p>",
		html.EscapeString(r.PrepTime), html.EscapeString(r.Servings)))

	return sb.String()
}
