package recipe

import (
	"encoding/json"
)

// RawIngredient is an ingredient entry as it arrives from recipe data.
// A nil field means the value was absent or was not a JSON string.
type RawIngredient struct {
	Name   *string `json:"name"`
	Amount *string `json:"amount"`
}

// Ingredient is a cleaned ingredient entry with a usable name.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// NewRawIngredient builds a RawIngredient with both fields present.
func NewRawIngredient(name, amount string) *RawIngredient {
	return &RawIngredient{Name: &name, Amount: &amount}
}

// UnmarshalJSON keeps only string-typed fields so that upstream garbage
// (numbers, objects, nulls) surfaces as an absent value instead of an error.
func (ri *RawIngredient) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Not an object: leave the entry empty.
		*ri = RawIngredient{}
		return nil
	}
	*ri = RawIngredient{
		Name:   stringField(fields["name"]),
		Amount: stringField(fields["amount"]),
	}
	return nil
}

func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// Recipe is a stored recipe with a structured ingredient list.
type Recipe struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Ingredients  []*RawIngredient `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Tags         []string         `json:"tags"`
	PrepTime     string           `json:"prep_time"`
	Servings     string           `json:"servings"`
	UpdatedAt    string           `json:"updated_at"`
}

// UnmarshalJSON decodes a recipe, treating a malformed ingredient list as empty.
// Elements that are not JSON objects decode to nil entries.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // avoid recursion
	aux := &struct {
		Ingredients  json.RawMessage `json:"ingredients"`
		Instructions json.RawMessage `json:"instructions"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Ingredients = decodeIngredients(aux.Ingredients)
	r.Instructions = decodeInstructions(aux.Instructions)
	return nil
}

func decodeIngredients(raw json.RawMessage) []*RawIngredient {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}

	out := make([]*RawIngredient, 0, len(elems))
	for _, elem := range elems {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(elem, &probe); err != nil || probe == nil {
			out = append(out, nil)
			continue
		}
		ri := &RawIngredient{}
		_ = ri.UnmarshalJSON(elem)
		out = append(out, ri)
	}
	return out
}

// decodeInstructions accepts either a list of steps or a single block of text.
func decodeInstructions(raw json.RawMessage) []string {
	var steps []string
	if err := json.Unmarshal(raw, &steps); err == nil {
		return steps
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil && text != "" {
		return []string{text}
	}
	return nil
}

// PostData is the raw material the extractor turns into a Recipe.
type PostData struct {
	ID        string
	Title     string
	UpdatedAt string
	HTML      string
}
