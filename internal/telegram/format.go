package telegram

import (
	"fmt"
	"strings"

	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatShoppingList(list *shopping.ShoppingList) string {
	items := make([]shopping.Item, len(list.Items))
	for i, item := range list.Items {
		items[i] = shopping.Item{Name: escapeMarkdown(item.Name), Amount: escapeMarkdown(item.Amount)}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 %s → %s\n", list.StartDate, list.EndDate))
	sb.WriteString(shopping.FormatMarkdown(items))
	return sb.String()
}

func formatPlanMarkdown(view planner.MealPlanView, days []string) string {
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plan*\n\n")

	empty := true
	for _, day := range days {
		slots, ok := view[day]
		if !ok || len(slots.Recipes()) == 0 {
			continue
		}
		empty = false

		sb.WriteString(fmt.Sprintf("*%s*\n", day))
		for _, entry := range []struct {
			label string
			title string
		}{
			{"Breakfast", title(slots.Breakfast)},
			{"Lunch", title(slots.Lunch)},
			{"Dinner", title(slots.Dinner)},
		} {
			if entry.title != "" {
				sb.WriteString(fmt.Sprintf("• %s: %s\n", entry.label, entry.title))
			}
		}
		var snacks []string
		for _, s := range slots.Snacks {
			if t := title(s); t != "" {
				snacks = append(snacks, t)
			}
		}
		if len(snacks) > 0 {
			sb.WriteString(fmt.Sprintf("• Snacks: %s\n", strings.Join(snacks, ", ")))
		}
		sb.WriteString("\n")
	}

	if empty {
		sb.WriteString("_Nothing planned yet_\n")
	}
	return sb.String()
}

// title is the display name of a planned recipe, falling back to its ID.
func title(r *recipe.Recipe) string {
	if r == nil {
		return ""
	}
	if r.Title == "" {
		return escapeMarkdown(r.ID)
	}
	return escapeMarkdown(r.Title)
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))
	return sb.String()
}
