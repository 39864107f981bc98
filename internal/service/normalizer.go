package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults applied when the generated payload omits or mangles a field.
const (
	defaultRecipeName = "Unnamed Recipe"
	defaultPrepTime   = 15
	defaultCookTime   = 30
	defaultServings   = 4
	defaultDifficulty = "medium"
)

// GeneratedRecipe is the canonical normalized output of the generation
// pipeline. Every field always holds a defined, type-correct value; slice
// fields are never nil so they marshal as [] rather than null.
type GeneratedRecipe struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Image              string            `json:"image"`
	PrepTime           int               `json:"prepTime"`
	CookTime           int               `json:"cookTime"`
	Servings           int               `json:"servings"`
	Difficulty         string            `json:"difficulty"`
	Calories           int               `json:"calories"`
	Protein            int               `json:"protein"`
	Carbs              int               `json:"carbs"`
	Fat                int               `json:"fat"`
	Ingredients        []IngredientEntry `json:"ingredients"`
	Instructions       []string          `json:"instructions"`
	Tags               []string          `json:"tags"`
	UsesFromFridge     []string          `json:"usesFromFridge"`
	NeedToBuy          []string          `json:"needToBuy"`
	MatchPercentage    int               `json:"matchPercentage"`
	MatchedIngredients []string          `json:"matchedIngredients"`
	MissingIngredients []string          `json:"missingIngredients"`
	IsAIGenerated      bool              `json:"isAiGenerated"`
}

// IngredientEntry is either free text ("2 cups flour") or a structured
// {name, amount, unit} object; generated payloads use both shapes. The
// zero-tolerance unmarshal never fails: unrecognized shapes degrade to
// their raw text.
type IngredientEntry struct {
	Name     string `json:"name,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Optional bool   `json:"optional,omitempty"`

	text string
}

// TextIngredient returns an entry holding free text.
func TextIngredient(text string) IngredientEntry {
	return IngredientEntry{text: text}
}

func (e *IngredientEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = IngredientEntry{text: s}
		return nil
	}

	var obj struct {
		Name     string          `json:"name"`
		Amount   json.RawMessage `json:"amount"`
		Unit     string          `json:"unit"`
		Optional bool            `json:"optional"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Name != "" {
		*e = IngredientEntry{
			Name:     obj.Name,
			Amount:   rawScalarString(obj.Amount),
			Unit:     obj.Unit,
			Optional: obj.Optional,
		}
		return nil
	}

	*e = IngredientEntry{text: strings.Trim(string(data), `"`)}
	return nil
}

func (e IngredientEntry) MarshalJSON() ([]byte, error) {
	if e.Name == "" {
		return json.Marshal(e.text)
	}
	type structured IngredientEntry
	return json.Marshal(structured(e))
}

// MatchName returns the name used for inventory matching.
func (e IngredientEntry) MatchName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.text
}

// String renders the entry for display: "amount unit name" for structured
// entries, the raw text otherwise.
func (e IngredientEntry) String() string {
	if e.Name == "" {
		return e.text
	}
	parts := make([]string, 0, 3)
	if e.Amount != "" {
		parts = append(parts, e.Amount)
	}
	if e.Unit != "" {
		parts = append(parts, e.Unit)
	}
	parts = append(parts, e.Name)
	return strings.Join(parts, " ")
}

// ParseRecipeResponse extracts the JSON array from raw generated text and
// normalizes each element into a fully-defaulted GeneratedRecipe. The API
// tends to wrap its JSON in prose or markdown fences, so extraction first
// strips fences, then falls back to the first-[..last-] slice. Unparseable
// input yields a RecipeParseError carrying the original text.
func ParseRecipeResponse(raw string) ([]GeneratedRecipe, error) {
	elements, err := extractJSONArray(raw)
	if err != nil {
		return nil, &RecipeParseError{Raw: raw, Err: err}
	}

	batch := time.Now().UnixMilli()
	seen := make(map[string]bool, len(elements))
	recipes := make([]GeneratedRecipe, 0, len(elements))
	for i, el := range elements {
		r := normalizeRecipe(el)
		if r.ID == "" || seen[r.ID] {
			r.ID = fmt.Sprintf("ai_%d_%d", batch, i)
		}
		seen[r.ID] = true
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func extractJSONArray(raw string) ([]json.RawMessage, error) {
	cleaned := strings.TrimSpace(stripCodeFences(raw))

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err == nil {
		return elements, nil
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end <= start {
		return nil, errors.New("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// normalizeRecipe applies the field-by-field defaulting rules. A non-object
// element yields a fully-defaulted record rather than an error.
func normalizeRecipe(el json.RawMessage) GeneratedRecipe {
	var m map[string]json.RawMessage
	_ = json.Unmarshal(el, &m)

	name := coerceString(m["name"], defaultRecipeName)
	image := coerceString(m["image"], "")
	if image == "" {
		subject := "dish"
		if name != defaultRecipeName {
			subject = name
		}
		image = "https://source.unsplash.com/400x300/?food," + url.QueryEscape(subject)
	}

	return GeneratedRecipe{
		ID:                 coerceString(m["id"], ""),
		Name:               name,
		Description:        coerceString(m["description"], ""),
		Image:              image,
		PrepTime:           coerceInt(m["prepTime"], defaultPrepTime),
		CookTime:           coerceInt(m["cookTime"], defaultCookTime),
		Servings:           coerceInt(m["servings"], defaultServings),
		Difficulty:         coerceString(m["difficulty"], defaultDifficulty),
		Calories:           coerceInt(m["calories"], 0),
		Protein:            coerceInt(m["protein"], 0),
		Carbs:              coerceInt(m["carbs"], 0),
		Fat:                coerceInt(m["fat"], 0),
		Ingredients:        ingredientList(m["ingredients"]),
		Instructions:       instructionList(m["instructions"]),
		Tags:               stringList(m["tags"]),
		UsesFromFridge:     stringList(m["usesFromFridge"]),
		NeedToBuy:          stringList(m["needToBuy"]),
		MatchPercentage:    coerceInt(m["matchPercentage"], 0),
		MatchedIngredients: []string{},
		MissingIngredients: []string{},
		IsAIGenerated:      true,
	}
}

// coerceInt converts a raw JSON value to a non-negative int. Strings are
// parsed by their leading digits ("15 minutes" -> 15); anything non-numeric
// or negative falls back to def. Never produces a partial or invalid value.
func coerceInt(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return def
		}
		return int(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, ok := leadingInt(strings.TrimSpace(s)); ok {
			return n
		}
	}
	return def
}

// leadingInt parses the leading decimal digits of s.
func leadingInt(s string) (int, bool) {
	n := 0
	seen := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	return n, seen
}

func coerceString(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return def
	}
	return s
}

func rawScalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// stringList coerces a raw JSON value into a string slice: arrays keep
// their string elements, a bare string is wrapped, anything else becomes
// the empty slice.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, el := range list {
			var s string
			if err := json.Unmarshal(el, &s); err == nil && s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	return []string{}
}

func ingredientList(raw json.RawMessage) []IngredientEntry {
	if len(raw) == 0 {
		return []IngredientEntry{}
	}
	var list []IngredientEntry
	if err := json.Unmarshal(raw, &list); err != nil {
		return []IngredientEntry{}
	}
	return list
}

// instructionList tolerates both plain strings and the object step shapes
// some models emit ({"step": ...}, {"text": ...} and friends).
func instructionList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return []string{s}
		}
		return []string{}
	}

	out := make([]string, 0, len(list))
	for _, el := range list {
		var s string
		if err := json.Unmarshal(el, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}

		var obj map[string]string
		if err := json.Unmarshal(el, &obj); err == nil {
			for _, key := range []string{"step", "text", "description", "instruction"} {
				if obj[key] != "" {
					out = append(out, obj[key])
					break
				}
			}
		}
	}
	return out
}
