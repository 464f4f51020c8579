package shopping

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mealcart/internal/planner"
)

// ErrInvalidRange is returned when a requested date range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range")

// PlanViewer produces the meal plan snapshot for a user and date range.
type PlanViewer interface {
	View(ctx context.Context, userID string, from, to time.Time) (planner.MealPlanView, error)
}

// Recorder observes generated shopping lists.
type Recorder interface {
	ObserveShoppingList(source string, items int)
}

// Service wires the shopping list engine to the meal plan store and list history.
type Service struct {
	plans    PlanViewer
	lists    *Repository
	recorder Recorder
}

// NewService creates a new Service. lists and recorder may be nil.
func NewService(plans PlanViewer, lists *Repository, recorder Recorder) *Service {
	return &Service{plans: plans, lists: lists, recorder: recorder}
}

// ForRange builds, stores and returns the shopping list for userID between
// from and to inclusive.
func (s *Service) ForRange(ctx context.Context, userID string, from, to time.Time) (*ShoppingList, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, planner.DateKey(to), planner.DateKey(from))
	}

	view, err := s.plans.View(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}

	list := &ShoppingList{
		UserID:    userID,
		StartDate: planner.DateKey(from),
		EndDate:   planner.DateKey(to),
		Items:     BuildShoppingList(view),
		CreatedAt: time.Now().UTC(),
	}

	if s.lists != nil {
		if _, err := s.lists.Save(ctx, list); err != nil {
			log.Printf("Warning: failed to save shopping list for user %s: %v", userID, err)
		}
	}
	s.observe("plan", len(list.Items))

	return list, nil
}

// Latest returns the most recently stored list for userID, or nil when none
// has been generated or list history is disabled.
func (s *Service) Latest(ctx context.Context, userID string) (*ShoppingList, error) {
	if s.lists == nil {
		return nil, nil
	}
	return s.lists.Latest(ctx, userID)
}

// Stored returns the newest list previously generated for exactly this range
// without rebuilding it. It returns nil when there is none.
func (s *Service) Stored(ctx context.Context, userID string, from, to time.Time) (*ShoppingList, error) {
	if s.lists == nil {
		return nil, nil
	}
	return s.lists.GetForRange(ctx, userID, planner.DateKey(from), planner.DateKey(to))
}

// FromView builds a shopping list from a caller-supplied meal plan snapshot.
func (s *Service) FromView(view planner.MealPlanView) []Item {
	items := BuildShoppingList(view)
	s.observe("view", len(items))
	return items
}

func (s *Service) observe(source string, items int) {
	if s.recorder != nil {
		s.recorder.ObserveShoppingList(source, items)
	}
}
