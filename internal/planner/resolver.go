package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"mealcart/internal/recipe"
)

// RecipeLookup loads recipes by ID. *recipe.Repository satisfies it.
type RecipeLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*recipe.Recipe, error)
}

// Resolver turns stored slot assignments into a MealPlanView.
type Resolver struct {
	plans   *PlanRepository
	recipes RecipeLookup
}

// NewResolver creates a new Resolver.
func NewResolver(plans *PlanRepository, recipes RecipeLookup) *Resolver {
	return &Resolver{plans: plans, recipes: recipes}
}

// View builds the meal plan snapshot for userID between from and to inclusive.
// Assignments whose recipe no longer exists leave their slot empty.
func (r *Resolver) View(ctx context.Context, userID string, from, to time.Time) (MealPlanView, error) {
	assignments, err := r.plans.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.RecipeID]; ok {
			continue
		}
		seen[a.RecipeID] = struct{}{}
		ids = append(ids, a.RecipeID)
	}

	recipes, err := r.recipes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load planned recipes: %w", err)
	}

	view := make(MealPlanView)
	for _, a := range assignments {
		day := view[a.Date]
		rec, ok := recipes[a.RecipeID]
		if !ok {
			log.Printf("Warning: recipe %s planned for %s %s not found, leaving slot empty", a.RecipeID, a.Date, a.Slot)
			view[a.Date] = day
			continue
		}
		day.Set(a.Slot, rec)
		view[a.Date] = day
	}
	return view, nil
}
