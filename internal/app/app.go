package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"mealcart/internal/ghost"
	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
	"mealcart/internal/storage"
)

// App holds the application's dependencies for the CLI.
type App struct {
	GhostClient  ghost.Client
	Extractor    *recipe.Extractor
	RecipeRepo   *recipe.Repository
	MetricsStore *metrics.Store
	Collectors   *metrics.Collectors
	PlanRepo     *planner.PlanRepository
	Shopping     *shopping.Service

	// Throttle is the pause between LLM calls during ingestion.
	Throttle time.Duration
	Out      io.Writer
}

// NewApp wires the repositories over db. Ghost and the extractor are set by
// the caller when ingestion is needed. collectors may be nil.
func NewApp(db *sql.DB, collectors *metrics.Collectors) *App {
	recipeRepo := recipe.NewRepository(db)
	planRepo := planner.NewPlanRepository(db)
	resolver := planner.NewResolver(planRepo, recipeRepo)

	var recorder shopping.Recorder
	if collectors != nil {
		recorder = collectors
	}
	return &App{
		RecipeRepo:   recipeRepo,
		PlanRepo:     planRepo,
		MetricsStore: metrics.NewStore(db),
		Collectors:   collectors,
		Shopping:     shopping.NewService(resolver, shopping.NewRepository(db), recorder),
		Throttle:     5 * time.Second,
		Out:          os.Stdout,
	}
}

// PrintPlanFileList builds and prints the shopping list for a plan file.
func (a *App) PrintPlanFileList(path string) error {
	view, err := storage.LoadPlanFile(path)
	if err != nil {
		return err
	}
	a.printItems(a.Shopping.FromView(view))
	return nil
}

// PrintStoredList builds and prints the shopping list for a user's stored plan.
func (a *App) PrintStoredList(ctx context.Context, userID string, from, to time.Time) error {
	list, err := a.Shopping.ForRange(ctx, userID, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "=== SHOPPING LIST %s → %s ===\n", list.StartDate, list.EndDate)
	a.printItems(list.Items)
	return nil
}

func (a *App) printItems(items []shopping.Item) {
	if len(items) == 0 {
		fmt.Fprintln(a.Out, "(nothing to buy)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(a.Out, "- %s: %s\n", item.Name, item.Amount)
	}
}

// Assign places an existing recipe into a user's meal slot.
func (a *App) Assign(ctx context.Context, userID string, date time.Time, slot planner.Slot, recipeID string) error {
	rec, err := a.RecipeRepo.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("recipe %s not found", recipeID)
	}
	if err := a.PlanRepo.Assign(ctx, userID, date, slot, recipeID); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Assigned '%s' to %s on %s.\n", rec.Title, slot, planner.DateKey(date))
	return nil
}

// Prune removes a user's assignments dated before today.
func (a *App) Prune(ctx context.Context, userID string, today time.Time) error {
	removed, err := a.PlanRepo.PrunePast(ctx, userID, today)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Removed %d past assignments.\n", removed)
	return nil
}

// CleanupMetrics drops LLM usage records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	removed, err := a.MetricsStore.Cleanup(ctx, days)
	if err != nil {
		return err
	}
	log.Printf("Removed %d execution metrics older than %d days.", removed, days)
	return nil
}
