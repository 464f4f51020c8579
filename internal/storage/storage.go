package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mealcart/internal/recipe"
)

// RecipeStore keeps recipes as one JSON file per recipe ID.
type RecipeStore struct {
	basePath string
}

// NewRecipeStore creates a new RecipeStore and ensures the base directory exists.
func NewRecipeStore(basePath string) (*RecipeStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &RecipeStore{basePath: basePath}, nil
}

// fileName makes the recipe ID safe for use as a file name.
func fileName(recipeID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "-", "..", "_")
	return r.Replace(recipeID) + ".json"
}

func (s *RecipeStore) path(recipeID string) string {
	return filepath.Join(s.basePath, fileName(recipeID))
}

// Save writes rec to <id>.json, replacing any previous version.
func (s *RecipeStore) Save(rec recipe.Recipe) error {
	if rec.ID == "" {
		return fmt.Errorf("recipe id is required")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := os.WriteFile(s.path(rec.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}

// Load reads the recipe stored under recipeID.
func (s *RecipeStore) Load(recipeID string) (*recipe.Recipe, error) {
	return readRecipe(s.path(recipeID))
}

// Exists reports whether a recipe file exists for recipeID.
func (s *RecipeStore) Exists(recipeID string) bool {
	_, err := os.Stat(s.path(recipeID))
	return err == nil
}

// ListAll loads every recipe in the store ordered by ID. Files that cannot be
// read or decoded are logged and skipped.
func (s *RecipeStore) ListAll() ([]recipe.Recipe, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe files: %w", err)
	}

	recipes := make([]recipe.Recipe, 0, len(matches))
	for _, match := range matches {
		rec, err := readRecipe(match)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", match, err)
			continue
		}
		if rec.ID == "" {
			rec.ID = strings.TrimSuffix(filepath.Base(match), ".json")
		}
		recipes = append(recipes, *rec)
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes, nil
}

func readRecipe(path string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &rec, nil
}
