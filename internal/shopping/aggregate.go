package shopping

import (
	"strings"

	"mealcart/internal/recipe"
)

// Item is one line of a rendered shopping list. Amount is display text.
type Item struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// group accumulates every entry that shares a merge key.
type group struct {
	name       string
	quantities []Quantity

	total        float64
	primary      Unit
	hasPrimary   bool
	incompatible bool
	toTaste      bool
}

func (g *group) add(q Quantity) {
	g.quantities = append(g.quantities, q)

	if q.Unit == UnitToTaste {
		g.toTaste = true
		return
	}
	if !g.hasPrimary {
		g.primary = q.Unit
		g.hasPrimary = true
		g.total += q.Value
		return
	}
	if q.Unit != g.primary {
		// Sticky: later matching units do not clear it.
		g.incompatible = true
		return
	}
	g.total += q.Value
}

func (g *group) render() string {
	var amount string
	switch {
	case g.incompatible || len(g.quantities) == 1:
		originals := make([]string, len(g.quantities))
		for i, q := range g.quantities {
			originals[i] = q.Original
			if strings.TrimSpace(originals[i]) == "" {
				originals[i] = DefaultAmount
			}
		}
		amount = strings.Join(originals, " + ")
	case !g.hasPrimary || (g.toTaste && g.total == 0):
		amount = string(UnitToTaste)
	case g.toTaste:
		amount = FormatAmount(g.total, g.primary) + " + " + string(UnitToTaste)
	default:
		amount = FormatAmount(g.total, g.primary)
	}

	if strings.TrimSpace(amount) == "" {
		return DefaultAmount
	}
	return amount
}

// groupIndex is an insertion-ordered map from merge key to group.
type groupIndex struct {
	keys   []string
	groups map[string]*group
}

func newGroupIndex() *groupIndex {
	return &groupIndex{groups: make(map[string]*group)}
}

// add files ing under its merge key, creating the group on first sight.
// The first-seen name is kept for display.
func (gi *groupIndex) add(ing recipe.Ingredient) {
	key := MergeKey(ing.Name)
	g, ok := gi.groups[key]
	if !ok {
		g = &group{name: ing.Name}
		gi.groups[key] = g
		gi.keys = append(gi.keys, key)
	}
	g.add(ParseQuantity(ing.Amount))
}

func (gi *groupIndex) items() []Item {
	items := make([]Item, 0, len(gi.keys))
	for _, key := range gi.keys {
		g := gi.groups[key]
		items = append(items, Item{Name: g.name, Amount: g.render()})
	}
	return items
}

// MergeKey normalizes an ingredient name for grouping.
func MergeKey(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Combine cleans entries, groups them by name and merges amounts that share
// a unit. Groups with mixed units keep every original amount side by side.
// Output follows the order in which each name was first seen.
func Combine(entries []*recipe.RawIngredient) []Item {
	idx := newGroupIndex()
	for _, entry := range entries {
		ing, ok := Clean(entry)
		if !ok {
			continue
		}
		idx.add(ing)
	}
	return idx.items()
}
