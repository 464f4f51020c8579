package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"mealcart/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	soup := Recipe{ID: "soup", Title: "Soup", Ingredients: []*RawIngredient{NewRawIngredient("Carrot", "2")}, UpdatedAt: "2024-05-01T10:00:00Z"}
	salad := Recipe{ID: "salad", Title: "Salad", UpdatedAt: "not a date"}

	t.Run("SaveRequiresID", func(t *testing.T) {
		if err := repo.Save(ctx, Recipe{Title: "No ID"}); err == nil {
			t.Error("Expected an error for a recipe without ID")
		}
	})

	t.Run("Save", func(t *testing.T) {
		for _, rec := range []Recipe{soup, salad} {
			if err := repo.Save(ctx, rec); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}
		soup.Title = "Carrot Soup"
		if err := repo.Save(ctx, soup); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		rec, err := repo.Get(ctx, "soup")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec == nil || rec.Title != "Carrot Soup" {
			t.Errorf("Expected updated title 'Carrot Soup', got %+v", rec)
		}

		missing, err := repo.Get(ctx, "nope")
		if err != nil || missing != nil {
			t.Errorf("Expected nil, nil for a missing recipe, got %+v, %v", missing, err)
		}
	})

	t.Run("GetByIDs", func(t *testing.T) {
		found, err := repo.GetByIDs(ctx, []string{"soup", "nope", "salad"})
		if err != nil {
			t.Fatalf("GetByIDs failed: %v", err)
		}
		if len(found) != 2 || found["soup"] == nil || found["salad"] == nil {
			t.Errorf("Expected soup and salad, got %v", found)
		}

		empty, err := repo.GetByIDs(ctx, nil)
		if err != nil || len(empty) != 0 {
			t.Errorf("Expected empty map for no IDs, got %v, %v", empty, err)
		}
	})

	t.Run("ListAndCount", func(t *testing.T) {
		recipes, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(recipes) != 2 || recipes[0].ID != "salad" || recipes[1].ID != "soup" {
			t.Errorf("Expected [salad soup], got %+v", recipes)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected count 2, got %d", count)
		}
	})
}
