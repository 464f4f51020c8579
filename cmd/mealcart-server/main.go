package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mealcart/internal/api"
	"mealcart/internal/clipper"
	"mealcart/internal/config"
	"mealcart/internal/database"
	"mealcart/internal/ghost"
	"mealcart/internal/llm"
	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
	"mealcart/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promCollectors := metrics.NewCollectors(registry)

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	resolver := planner.NewResolver(planRepo, recipeRepo)
	shoppingSvc := shopping.NewService(resolver, shopping.NewRepository(db.SQL), promCollectors)
	metricsStore := metrics.NewStore(db.SQL)

	routerCfg := api.RouterConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		Gatherer:     registry,
	}

	if err := cfg.RequireTelegram(); err != nil {
		log.Printf("Telegram bot disabled: %v", err)
	} else {
		deps := telegram.Deps{
			Shopping:  shoppingSvc,
			Plans:     resolver,
			Usage:     metricsStore,
			Ingest:    promCollectors,
			DataPaths: []string{cfg.DatabasePath, cfg.RecipeStoragePath},
		}

		if err := cfg.RequireGemini(); err != nil {
			log.Printf("Recipe clipping disabled: %v", err)
		} else {
			geminiClient, err := llm.NewGeminiClient(ctx, cfg)
			if err != nil {
				log.Fatalf("Failed to create Gemini client: %v", err)
			}
			defer geminiClient.Close()

			var ghostClient ghost.Client
			if cfg.RequireGhost() == nil {
				ghostClient = ghost.NewClient(cfg)
			}
			deps.Clipper = clipper.NewClipper(recipe.NewExtractor(geminiClient), recipeRepo, ghostClient)
		}

		bot, err := telegram.NewBot(cfg, deps)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		routerCfg.Webhook = bot
	}

	handler := api.NewHandler(shoppingSvc, planRepo, recipeRepo, cfg.ShoppingListDays)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler, routerCfg),
	}

	go func() {
		log.Printf("Server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
