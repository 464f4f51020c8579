package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mealcart/internal/planner"

	"gopkg.in/yaml.v3"
)

// LoadPlanFile reads a meal plan snapshot from a .json, .yaml or .yml file.
// YAML documents go through the same tolerant JSON decoding as API payloads,
// so malformed ingredient lists degrade the same way in both formats.
func LoadPlanFile(path string) (planner.MealPlanView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML plan: %w", err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML plan: %w", err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported plan file extension %q", ext)
	}

	var view planner.MealPlanView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if view == nil {
		view = planner.MealPlanView{}
	}
	return view, nil
}
