package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mealcart/internal/config"
	"mealcart/internal/llm"
	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxListDays = 31

// sender is the subset of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// ShoppingLister builds shopping lists for stored plans and recalls the last one.
type ShoppingLister interface {
	ForRange(ctx context.Context, userID string, from, to time.Time) (*shopping.ShoppingList, error)
	Latest(ctx context.Context, userID string) (*shopping.ShoppingList, error)
}

// PlanViewer resolves stored plans into recipes.
type PlanViewer interface {
	View(ctx context.Context, userID string, from, to time.Time) (planner.MealPlanView, error)
}

// RecipeClipper turns a URL into a stored recipe.
type RecipeClipper interface {
	ClipURL(ctx context.Context, url string) (*recipe.Recipe, llm.AgentMeta, error)
}

// UsageStore records and reports LLM token usage.
type UsageStore interface {
	RecordMeta(ctx context.Context, meta llm.AgentMeta) error
	DailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// IngestObserver counts ingestion outcomes.
type IngestObserver interface {
	ObserveIngest(result string)
}

// Deps are the services the bot talks to. Clipper, Usage and Ingest may be nil.
type Deps struct {
	Shopping  ShoppingLister
	Plans     PlanViewer
	Clipper   RecipeClipper
	Usage     UsageStore
	Ingest    IngestObserver
	DataPaths []string
}

// Bot answers Telegram messages with shopping lists, meal plans and recipe clips.
type Bot struct {
	api  sender
	cfg  *config.Config
	deps Deps
	now  func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, deps Deps) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, deps), nil
}

func newBot(api sender, cfg *config.Config, deps Deps) *Bot {
	return &Bot{api: api, cfg: cfg, deps: deps, now: time.Now}
}

// ServeHTTP handles a webhook call. Messages are processed in the
// background so Telegram gets its acknowledgement right away.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", msg.From.ID, msg.From.UserName)
		return
	}

	go b.processMessage(msg)
}

func (b *Bot) isAllowed(userID int64) bool {
	if userID == b.cfg.AdminTelegramID && userID != 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg.Chat.ID, text)
		return
	}

	switch msg.Command() {
	case "list":
		b.handleList(ctx, msg)
	case "last":
		b.handleLast(ctx, msg)
	case "plan":
		b.handlePlan(ctx, msg)
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetrics(ctx, msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

const helpText = "🧺 *mealcart*\n\n" +
	"/list [days] - shopping list for the coming days\n" +
	"/last - the shopping list you built most recently\n" +
	"/plan [days] - what is planned for the coming days\n" +
	"Send a recipe URL to clip it."

// parseDays reads the optional day count argument of /list and /plan.
func parseDays(args string, fallback int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 || n > maxListDays {
		return 0, fmt.Errorf("days must be a number between 1 and %d", maxListDays)
	}
	return n, nil
}

func (b *Bot) window(msg *tgbotapi.Message) (from, to time.Time, err error) {
	days, err := parseDays(msg.CommandArguments(), b.cfg.ShoppingListDays)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from = planner.StartOfDay(b.now().UTC())
	return from, from.AddDate(0, 0, days-1), nil
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) {
	from, to, err := b.window(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "⚠️ "+err.Error())
		return
	}

	list, err := b.deps.Shopping.ForRange(ctx, userKey(msg.From.ID), from, to)
	if err != nil {
		log.Printf("Error building shopping list for %d: %v", msg.From.ID, err)
		b.reply(msg.Chat.ID, "❌ Could not build your shopping list.")
		return
	}

	b.reply(msg.Chat.ID, formatShoppingList(list))
}

func (b *Bot) handleLast(ctx context.Context, msg *tgbotapi.Message) {
	list, err := b.deps.Shopping.Latest(ctx, userKey(msg.From.ID))
	if err != nil {
		log.Printf("Error loading last shopping list for %d: %v", msg.From.ID, err)
		b.reply(msg.Chat.ID, "❌ Could not load your last shopping list.")
		return
	}
	if list == nil {
		b.reply(msg.Chat.ID, "🧺 No shopping list yet. Use /list to build one.")
		return
	}

	b.reply(msg.Chat.ID, formatShoppingList(list))
}

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message) {
	from, to, err := b.window(msg)
	if err != nil {
		b.reply(msg.Chat.ID, "⚠️ "+err.Error())
		return
	}

	view, err := b.deps.Plans.View(ctx, userKey(msg.From.ID), from, to)
	if err != nil {
		log.Printf("Error loading plan for %d: %v", msg.From.ID, err)
		b.reply(msg.Chat.ID, "❌ Could not load your meal plan.")
		return
	}

	b.reply(msg.Chat.ID, formatPlanMarkdown(view, planner.DaysInRange(from, to)))
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	if b.deps.Clipper == nil {
		b.reply(chatID, "⚠️ Recipe clipping is not configured.")
		return
	}

	sent, err := b.api.Send(markdown(chatID, "✂️ *Clipping recipe...*"))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	rec, meta, err := b.deps.Clipper.ClipURL(ctx, url)
	if b.deps.Usage != nil {
		if rerr := b.deps.Usage.RecordMeta(ctx, meta); rerr != nil {
			log.Printf("Warning: failed to record clip usage: %v", rerr)
		}
	}

	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		b.observeIngest("failed")
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		b.observeIngest("saved")
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*ID:* `%s`\n*Ingredients:* %d",
			escapeMarkdown(rec.Title), rec.ID, len(rec.Ingredients))
	}

	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit reply: %v", err)
	}
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64) {
	if b.deps.Usage == nil {
		b.reply(chatID, "⚠️ Metrics are not configured.")
		return
	}
	usage, err := b.deps.Usage.DailyUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	b.reply(chatID, formatMetrics(usage, metrics.GetSysHealth(b.deps.DataPaths...)))
}

func (b *Bot) observeIngest(result string) {
	if b.deps.Ingest != nil {
		b.deps.Ingest.ObserveIngest(result)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(markdown(chatID, text)); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func markdown(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
