package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mealcart/internal/app"
	"mealcart/internal/clipper"
	"mealcart/internal/config"
	"mealcart/internal/database"
	"mealcart/internal/ghost"
	"mealcart/internal/llm"
	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Plan files need no database.
	if os.Args[1] == "list" {
		listCmd := flag.NewFlagSet("list", flag.ExitOnError)
		planFile := listCmd.String("plan", "", "Meal plan file (.json or .yaml) to build the list from")
		user := listCmd.String("user", "cli", "User whose stored plan is used")
		from := listCmd.String("from", "", "First day (YYYY-MM-DD), defaults to today")
		to := listCmd.String("to", "", "Last day (YYYY-MM-DD), defaults to from plus SHOPPING_LIST_DAYS")
		listCmd.Parse(os.Args[2:])

		if *planFile != "" {
			application := &app.App{Shopping: shopping.NewService(nil, nil, nil), Out: os.Stdout}
			if err := application.PrintPlanFileList(*planFile); err != nil {
				log.Fatalf("Failed to build shopping list: %v", err)
			}
			return
		}

		start, end, err := dateRange(*from, *to, cfg.ShoppingListDays)
		if err != nil {
			log.Fatalf("%v", err)
		}
		application, closeDB := openApp(cfg)
		defer closeDB()
		if err := application.PrintStoredList(ctx, *user, start, end); err != nil {
			log.Fatalf("Failed to build shopping list: %v", err)
		}
		return
	}

	application, closeDB := openApp(cfg)
	defer closeDB()

	switch os.Args[1] {
	case "assign":
		assignCmd := flag.NewFlagSet("assign", flag.ExitOnError)
		user := assignCmd.String("user", "cli", "User whose plan is changed")
		date := assignCmd.String("date", "", "Day (YYYY-MM-DD)")
		slot := assignCmd.String("slot", "dinner", "Meal slot: breakfast, lunch, dinner or snacks")
		recipeID := assignCmd.String("recipe", "", "Recipe ID to assign")
		clearSlot := assignCmd.Bool("clear", false, "Clear the slot instead of assigning")
		assignCmd.Parse(os.Args[2:])

		day, err := planner.ParseDate(*date)
		if err != nil {
			log.Fatalf("%v", err)
		}
		s, err := planner.ParseSlot(*slot)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if *clearSlot {
			if err := application.PlanRepo.Clear(ctx, *user, day, s); err != nil {
				log.Fatalf("Failed to clear slot: %v", err)
			}
			fmt.Printf("Cleared %s on %s.\n", s, planner.DateKey(day))
			return
		}
		if *recipeID == "" {
			log.Fatalf("-recipe is required")
		}
		if err := application.Assign(ctx, *user, day, s, *recipeID); err != nil {
			log.Fatalf("Failed to assign recipe: %v", err)
		}
	case "prune":
		pruneCmd := flag.NewFlagSet("prune", flag.ExitOnError)
		user := pruneCmd.String("user", "cli", "User whose past assignments are removed")
		pruneCmd.Parse(os.Args[2:])

		if err := application.Prune(ctx, *user, today()); err != nil {
			log.Fatalf("Prune failed: %v", err)
		}
	case "ingest":
		geminiClient := attachIngestion(ctx, cfg, application)
		defer geminiClient.Close()

		if _, err := application.IngestRecipes(ctx); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
	case "clip":
		if len(os.Args) < 3 {
			log.Fatalf("Usage: mealcart clip <url>")
		}
		geminiClient := attachIngestion(ctx, cfg, application)
		defer geminiClient.Close()

		c := clipper.NewClipper(application.Extractor, application.RecipeRepo, application.GhostClient)
		rec, meta, err := c.ClipURL(ctx, os.Args[2])
		if rerr := application.MetricsStore.RecordMeta(ctx, meta); rerr != nil {
			log.Printf("Warning: failed to record metrics: %v", rerr)
		}
		if err != nil {
			log.Fatalf("Clip failed: %v", err)
		}
		fmt.Printf("Saved '%s' as %s with %d ingredients.\n", rec.Title, rec.ID, len(rec.Ingredients))
	case "import-recipes":
		dir := cfg.RecipeStoragePath
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		if _, err := application.ImportRecipes(ctx, dir); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	case "export-recipes":
		dir := cfg.RecipeStoragePath
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		if _, err := application.ExportRecipes(ctx, dir); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		if err := application.CleanupMetrics(ctx, *days); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func openApp(cfg *config.Config) (*app.App, func()) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	application := app.NewApp(db.SQL, metrics.NewCollectors(prometheus.NewRegistry()))
	return application, func() { db.Close() }
}

// attachIngestion sets up Ghost and Gemini on application. The caller closes
// the returned client.
func attachIngestion(ctx context.Context, cfg *config.Config, application *app.App) *llm.GeminiClient {
	if err := cfg.RequireGemini(); err != nil {
		log.Fatalf("%v", err)
	}
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	application.Extractor = recipe.NewExtractor(geminiClient)

	if err := cfg.RequireGhost(); err != nil {
		log.Printf("Ghost disabled: %v", err)
	} else {
		application.GhostClient = ghost.NewClient(cfg)
	}
	return geminiClient
}

func today() time.Time {
	return planner.StartOfDay(time.Now())
}

func dateRange(from, to string, days int) (time.Time, time.Time, error) {
	start := today()
	if from != "" {
		t, err := planner.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	end := start.AddDate(0, 0, days-1)
	if to != "" {
		t, err := planner.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

func printUsage() {
	fmt.Println("Usage: mealcart <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  list               Print the shopping list for a plan file (-plan) or a stored plan")
	fmt.Println("  assign             Assign a recipe to a meal slot (-date, -slot, -recipe, -clear)")
	fmt.Println("  prune              Remove assignments dated before today")
	fmt.Println("  ingest             Fetch recipes from Ghost and extract their ingredients")
	fmt.Println("  clip <url>         Extract a recipe from any web page and save it")
	fmt.Println("  import-recipes     Load recipe JSON files into the database")
	fmt.Println("  export-recipes     Write every stored recipe to JSON files")
	fmt.Println("  metrics-cleanup    Remove old LLM usage records")
}
