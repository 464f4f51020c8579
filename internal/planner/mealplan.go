package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mealcart/internal/recipe"
)

// DateLayout is the layout of the date keys used throughout meal plans.
const DateLayout = "2006-01-02"

// ErrUnknownSlot is returned when a slot name is not one of the known meal slots.
var ErrUnknownSlot = errors.New("unknown meal slot")

// Slot names a meal within a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnacks    Slot = "snacks"
)

// Slots lists the meal slots in the order they are visited within a day.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnacks}

// ParseSlot converts a user-supplied slot name into a Slot.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	switch slot {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnacks:
		return slot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// Multi reports whether the slot holds a list of recipes rather than a single one.
func (s Slot) Multi() bool {
	return s == SlotSnacks
}

// DaySlots holds the recipes assigned to each meal of one day.
// Breakfast, lunch and dinner hold at most one recipe; nil means unassigned.
type DaySlots struct {
	Breakfast *recipe.Recipe   `json:"breakfast,omitempty"`
	Lunch     *recipe.Recipe   `json:"lunch,omitempty"`
	Dinner    *recipe.Recipe   `json:"dinner,omitempty"`
	Snacks    []*recipe.Recipe `json:"snacks,omitempty"`
}

// Set places rec in the given slot. Snacks are appended.
func (d *DaySlots) Set(slot Slot, rec *recipe.Recipe) {
	switch slot {
	case SlotBreakfast:
		d.Breakfast = rec
	case SlotLunch:
		d.Lunch = rec
	case SlotDinner:
		d.Dinner = rec
	case SlotSnacks:
		d.Snacks = append(d.Snacks, rec)
	}
}

// Recipes returns the assigned recipes in slot order, skipping empty slots.
func (d DaySlots) Recipes() []*recipe.Recipe {
	var out []*recipe.Recipe
	for _, r := range []*recipe.Recipe{d.Breakfast, d.Lunch, d.Dinner} {
		if r != nil {
			out = append(out, r)
		}
	}
	for _, r := range d.Snacks {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// MealPlanView maps a date key (YYYY-MM-DD) to the meals planned for that day.
// It is a read-only snapshot handed to the shopping list builder.
type MealPlanView map[string]DaySlots

// DateKey formats t as a meal plan date key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a meal plan date key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DaysInRange returns the date keys from from to to inclusive.
// It returns nil when to is before from.
func DaysInRange(from, to time.Time) []string {
	from = StartOfDay(from)
	to = StartOfDay(to)
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, DateKey(d))
	}
	return days
}

// StartOfDay returns midnight UTC of t's calendar date, the form ParseDate
// produces.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
