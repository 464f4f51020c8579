package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"mealcart/internal/ghost"
	"mealcart/internal/llm"
	"mealcart/internal/recipe"
	"mealcart/internal/storage"
)

// RecipeSaver persists extracted recipes.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// UsageRecorder records LLM usage for a processed recipe.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta llm.AgentMeta) error
}

// IngestReport summarizes an ingestion run.
type IngestReport struct {
	Saved   int
	Skipped int
	Failed  int
}

// ProcessAndSaveRecipe extracts a structured recipe from post, saves it and
// records the LLM usage. Usage is recorded even when extraction fails.
func ProcessAndSaveRecipe(
	ctx context.Context,
	extractor *recipe.Extractor,
	saver RecipeSaver,
	usage UsageRecorder,
	post ghost.Post,
) error {
	rec, meta, err := extractor.Extract(ctx, recipe.PostData{
		ID:        post.ID,
		Title:     post.Title,
		UpdatedAt: post.UpdatedAt,
		HTML:      post.HTML,
	})
	if usage != nil {
		if rerr := usage.RecordMeta(ctx, meta); rerr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, rerr)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to extract recipe: %w", err)
	}

	if err := saver.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// IngestRecipes fetches every Ghost post and extracts the ones that are new
// or changed since they were last stored.
func (a *App) IngestRecipes(ctx context.Context) (IngestReport, error) {
	var report IngestReport
	if a.GhostClient == nil || a.Extractor == nil {
		return report, fmt.Errorf("ingestion requires Ghost and Gemini to be configured")
	}

	fmt.Fprintln(a.Out, "Fetching and processing recipes...")
	posts, err := a.GhostClient.FetchRecipes(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	fmt.Fprintf(a.Out, "Successfully fetched %d recipe posts from Ghost.\n", len(posts))

	processed := 0
	for _, post := range posts {
		existing, err := a.RecipeRepo.Get(ctx, post.ID)
		if err != nil {
			log.Printf("Failed to look up '%s': %v", post.Title, err)
		}
		if existing != nil && existing.UpdatedAt == post.UpdatedAt {
			log.Printf("Recipe '%s' is up to date. Skipping.", post.Title)
			report.Skipped++
			a.observe("skipped")
			continue
		}

		if processed > 0 && a.Throttle > 0 {
			// Stay under the Gemini free tier rate limit.
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(a.Throttle):
			}
		}
		processed++

		log.Printf("Extracting '%s'...", post.Title)
		var usage UsageRecorder
		if a.MetricsStore != nil {
			usage = a.MetricsStore
		}
		if err := ProcessAndSaveRecipe(ctx, a.Extractor, a.RecipeRepo, usage, post); err != nil {
			log.Printf("Failed to process '%s': %v", post.Title, err)
			report.Failed++
			a.observe("failed")
			continue
		}
		report.Saved++
		a.observe("saved")
		log.Printf("Successfully processed '%s'.", post.Title)
	}

	fmt.Fprintf(a.Out, "Ingestion complete: %d saved, %d skipped, %d failed.\n", report.Saved, report.Skipped, report.Failed)
	a.printRecipeCount(ctx)
	return report, nil
}

func (a *App) printRecipeCount(ctx context.Context) {
	total, err := a.RecipeRepo.Count(ctx)
	if err != nil {
		log.Printf("Warning: failed to count recipes: %v", err)
		return
	}
	fmt.Fprintf(a.Out, "%d recipes in the database.\n", total)
}

func (a *App) observe(result string) {
	if a.Collectors != nil {
		a.Collectors.ObserveIngest(result)
	}
}

// ImportRecipes loads every recipe file in dir into the database. Recipes
// already stored with the same UpdatedAt are left alone.
func (a *App) ImportRecipes(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recipes, err := store.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list recipes from file storage: %w", err)
	}

	imported := 0
	for _, rec := range recipes {
		existing, err := a.RecipeRepo.Get(ctx, rec.ID)
		if err != nil {
			return imported, err
		}
		if existing != nil && existing.UpdatedAt == rec.UpdatedAt {
			continue
		}
		if err := a.RecipeRepo.Save(ctx, rec); err != nil {
			log.Printf("Failed to import recipe '%s' (ID: %s): %v", rec.Title, rec.ID, err)
			continue
		}
		imported++
	}

	fmt.Fprintf(a.Out, "Imported %d of %d recipes from %s.\n", imported, len(recipes), dir)
	a.printRecipeCount(ctx)
	return imported, nil
}

// ExportRecipes writes every stored recipe to dir as <id>.json.
func (a *App) ExportRecipes(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recipes, err := a.RecipeRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	for _, rec := range recipes {
		if err := store.Save(rec); err != nil {
			return 0, fmt.Errorf("failed to export recipe %s: %w", rec.ID, err)
		}
	}

	fmt.Fprintf(a.Out, "Exported %d recipes to %s.\n", len(recipes), dir)
	return len(recipes), nil
}
