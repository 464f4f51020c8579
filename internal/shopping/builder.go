package shopping

import (
	"sort"

	"mealcart/internal/planner"
	"mealcart/internal/recipe"
)

// BuildShoppingList collects the ingredients of every recipe in view and
// combines them into a shopping list. Dates are visited in ascending order
// and, within a day, breakfast, lunch, dinner and then each snack.
// The view is only read; date filtering is left to the caller.
func BuildShoppingList(view planner.MealPlanView) []Item {
	dates := make([]string, 0, len(view))
	for date := range view {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var entries []*recipe.RawIngredient
	for _, date := range dates {
		for _, rec := range view[date].Recipes() {
			entries = append(entries, cleanedIngredients(rec)...)
		}
	}
	return Combine(entries)
}

// cleanedIngredients returns the valid entries of rec so a single bad entry
// cannot spoil the rest of the run.
func cleanedIngredients(rec *recipe.Recipe) []*recipe.RawIngredient {
	if rec == nil {
		return nil
	}
	out := make([]*recipe.RawIngredient, 0, len(rec.Ingredients))
	for _, entry := range rec.Ingredients {
		ing, ok := Clean(entry)
		if !ok {
			continue
		}
		out = append(out, recipe.NewRawIngredient(ing.Name, ing.Amount))
	}
	return out
}
