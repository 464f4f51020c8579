package planner

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Assignment is a single recipe placed in a meal slot on a given date.
type Assignment struct {
	UserID   string
	Date     string
	Slot     Slot
	Position int
	RecipeID string
}

// PlanRepository is a database-backed store of meal slot assignments.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Assign puts recipeID into the slot for userID on date.
// Breakfast, lunch and dinner are replaced; snacks are appended.
func (r *PlanRepository) Assign(ctx context.Context, userID string, date time.Time, slot Slot, recipeID string) error {
	key := DateKey(date)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position := 0
	if slot.Multi() {
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM meal_slots WHERE user_id = ? AND plan_date = ? AND slot = ?`,
			userID, key, string(slot),
		).Scan(&position)
		if err != nil {
			return fmt.Errorf("failed to compute snack position: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM meal_slots WHERE user_id = ? AND plan_date = ? AND slot = ?`,
			userID, key, string(slot),
		); err != nil {
			return fmt.Errorf("failed to clear slot %s on %s: %w", slot, key, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meal_slots (user_id, plan_date, slot, position, recipe_id) VALUES (?, ?, ?, ?, ?)`,
		userID, key, string(slot), position, recipeID,
	); err != nil {
		return fmt.Errorf("failed to assign recipe %s to %s on %s: %w", recipeID, slot, key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

// Clear removes every recipe from the slot for userID on date.
func (r *PlanRepository) Clear(ctx context.Context, userID string, date time.Time, slot Slot) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_slots WHERE user_id = ? AND plan_date = ? AND slot = ?`,
		userID, DateKey(date), string(slot),
	)
	if err != nil {
		return fmt.Errorf("failed to clear slot %s: %w", slot, err)
	}
	return nil
}

// ListRange returns the assignments for userID between from and to inclusive,
// ordered by date, then slot order, then position.
func (r *PlanRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_date, slot, position, recipe_id FROM meal_slots
		 WHERE user_id = ? AND plan_date >= ? AND plan_date <= ?
		 ORDER BY plan_date,
		   CASE slot WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 3 END,
		   position`,
		userID, DateKey(from), DateKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal slots for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a := Assignment{UserID: userID}
		var slot string
		if err := rows.Scan(&a.Date, &slot, &a.Position, &a.RecipeID); err != nil {
			return nil, fmt.Errorf("failed to scan meal slot row: %w", err)
		}
		a.Slot = Slot(slot)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// PrunePast deletes every assignment for userID dated before today.
// It returns the number of removed assignments.
func (r *PlanRepository) PrunePast(ctx context.Context, userID string, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_slots WHERE user_id = ? AND plan_date < ?`,
		userID, DateKey(today),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune past meal slots for user %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return affected, nil
}
