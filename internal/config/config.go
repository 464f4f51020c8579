package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath      string
	RecipeStoragePath string
	HTTPAddr          string
	CORSAllowOrigins  []string
	ShoppingListDays  int

	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string

	GeminiAPIKey string
	GeminiModel  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// Integrations are optional here; commands that need one call its Require method.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:      envOr("DATABASE_PATH", "data/mealcart.db"),
		RecipeStoragePath: envOr("RECIPE_STORAGE_PATH", "data/recipes"),
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		CORSAllowOrigins:  splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
		ShoppingListDays:  7,

		GhostURL:        strings.TrimSuffix(os.Getenv("GHOST_API_URL"), "/"),
		GhostContentKey: os.Getenv("GHOST_CONTENT_API_KEY"),
		GhostAdminKey:   os.Getenv("GHOST_ADMIN_API_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-1.5-flash"),

		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	if cfg.GhostAdminKey == "" {
		// Fallback to content key if only one is provided
		cfg.GhostAdminKey = cfg.GhostContentKey
	}

	if v := os.Getenv("SHOPPING_LIST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("SHOPPING_LIST_DAYS must be a positive integer, got %q", v)
		}
		cfg.ShoppingListDays = days
	}

	for _, s := range splitList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", s, err)
		}
		cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireGhost reports whether the Ghost integration is configured.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	if c.GhostContentKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	return nil
}

// RequireGemini reports whether the Gemini integration is configured.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram reports whether the Telegram bot is configured.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
