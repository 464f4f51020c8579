package shopping

import (
	"strings"

	"mealcart/internal/recipe"
)

// Clean validates a raw ingredient entry and returns a trimmed copy.
// It reports false for entries that must be dropped: a nil entry, a missing
// name, or a name that is blank or the literal "undefined" / "null" left
// behind by corrupted upstream data. A missing amount becomes DefaultAmount.
func Clean(entry *recipe.RawIngredient) (recipe.Ingredient, bool) {
	if entry == nil || entry.Name == nil {
		return recipe.Ingredient{}, false
	}

	name := strings.TrimSpace(*entry.Name)
	if name == "" || name == "undefined" || name == "null" {
		return recipe.Ingredient{}, false
	}

	amount := DefaultAmount
	if entry.Amount != nil {
		amount = strings.TrimSpace(*entry.Amount)
	}

	return recipe.Ingredient{Name: name, Amount: amount}, true
}
