package shopping

import "time"

// ShoppingList is a generated shopping list for a user and date range.
type ShoppingList struct {
	ID        int64     `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}
