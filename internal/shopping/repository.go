package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores a new shopping list and returns its ID.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	createdAt := list.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (user_id, start_date, end_date, items, created_at) VALUES (?, ?, ?, ?, ?)`,
		list.UserID, list.StartDate, list.EndDate, string(itemsJSON), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list id: %w", err)
	}
	list.ID = id
	list.CreatedAt = createdAt
	return id, nil
}

// Latest retrieves the most recently generated shopping list for a user.
// It returns nil, nil when the user has none.
func (r *Repository) Latest(ctx context.Context, userID string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, start_date, end_date, items, created_at FROM shopping_lists
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID,
	)
	list, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest shopping list: %w", err)
	}
	return list, nil
}

// GetForRange retrieves the newest shopping list generated for exactly this date range.
// It returns nil, nil when none exists.
func (r *Repository) GetForRange(ctx context.Context, userID, startDate, endDate string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, start_date, end_date, items, created_at FROM shopping_lists
		 WHERE user_id = ? AND start_date = ? AND end_date = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, startDate, endDate,
	)
	list, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list by range: %w", err)
	}
	return list, nil
}

func scanList(row *sql.Row) (*ShoppingList, error) {
	var (
		list      ShoppingList
		items     string
		createdAt string
	)
	if err := row.Scan(&list.ID, &list.UserID, &list.StartDate, &list.EndDate, &items, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	list.CreatedAt = ts
	return &list, nil
}
