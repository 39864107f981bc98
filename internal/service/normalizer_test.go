package service_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/service"
)

func TestParseRecipeResponse(t *testing.T) {
	t.Run("parses a fenced JSON array", func(t *testing.T) {
		raw := "Here are your recipes:\n```json\n" +
			`[{"name": "Pancakes", "prepTime": 10, "cookTime": 20, "servings": 2,
			   "difficulty": "easy", "ingredients": ["2 cups flour", "1 cup milk"],
			   "instructions": ["Mix", "Fry"]}]` +
			"\n```\nEnjoy!"

		recipes, err := service.ParseRecipeResponse(raw)
		require.NoError(t, err)
		require.Len(t, recipes, 1)

		r := recipes[0]
		assert.Equal(t, "Pancakes", r.Name)
		assert.Equal(t, 10, r.PrepTime)
		assert.Equal(t, 20, r.CookTime)
		assert.Equal(t, 2, r.Servings)
		assert.Equal(t, "easy", r.Difficulty)
		assert.Len(t, r.Ingredients, 2)
		assert.Equal(t, []string{"Mix", "Fry"}, r.Instructions)
		assert.True(t, r.IsAIGenerated)
	})

	t.Run("extracts array embedded in prose without fences", func(t *testing.T) {
		raw := `Sure! [{"name": "Soup"}] Hope you like it.`

		recipes, err := service.ParseRecipeResponse(raw)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Soup", recipes[0].Name)
	})

	t.Run("minimal object receives every default", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(`[{"name": "Soup"}]`)
		require.NoError(t, err)
		require.Len(t, recipes, 1)

		r := recipes[0]
		assert.Equal(t, "Soup", r.Name)
		assert.Equal(t, 15, r.PrepTime)
		assert.Equal(t, 30, r.CookTime)
		assert.Equal(t, 4, r.Servings)
		assert.Equal(t, "medium", r.Difficulty)
		assert.Equal(t, 0, r.Calories)
		assert.Equal(t, "https://source.unsplash.com/400x300/?food,Soup", r.Image)
		assert.NotEmpty(t, r.ID)
		assert.True(t, r.IsAIGenerated)

		// Slices are empty, never nil, so they serialize as [].
		assert.NotNil(t, r.Ingredients)
		assert.NotNil(t, r.Instructions)
		assert.NotNil(t, r.Tags)
		assert.NotNil(t, r.UsesFromFridge)
		assert.NotNil(t, r.NeedToBuy)
	})

	t.Run("missing name falls back to Unnamed Recipe", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(`[{}]`)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Unnamed Recipe", recipes[0].Name)
		assert.Equal(t, "https://source.unsplash.com/400x300/?food,dish", recipes[0].Image)
	})

	t.Run("non-object elements degrade to fully defaulted records", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(`["just a string", 42]`)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		for _, r := range recipes {
			assert.Equal(t, "Unnamed Recipe", r.Name)
			assert.Equal(t, 15, r.PrepTime)
		}
	})

	t.Run("duplicate ids are deduplicated within a batch", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(
			`[{"id": "ai_1", "name": "A"}, {"id": "ai_1", "name": "B"}]`)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.NotEqual(t, recipes[0].ID, recipes[1].ID)
	})

	t.Run("unparseable text yields RecipeParseError carrying the raw text", func(t *testing.T) {
		raw := "I'm sorry, I can't help with that."
		_, err := service.ParseRecipeResponse(raw)
		require.Error(t, err)

		var parseErr *service.RecipeParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, raw, parseErr.Raw)
	})

	t.Run("instruction steps tolerate object shapes", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(
			`[{"name": "Stew", "instructions": [{"step": "Chop"}, {"text": "Simmer"}, "Serve"]}]`)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, []string{"Chop", "Simmer", "Serve"}, recipes[0].Instructions)
	})

	t.Run("bare string tags are wrapped into a list", func(t *testing.T) {
		recipes, err := service.ParseRecipeResponse(`[{"name": "Stew", "tags": "hearty"}]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"hearty"}, recipes[0].Tags)
	})
}

func TestCoerceIntBehavior(t *testing.T) {
	cases := []struct {
		name string
		json string
		want int
	}{
		{"numeric value kept", `[{"name": "x", "prepTime": 25}]`, 25},
		{"float truncated", `[{"name": "x", "prepTime": 25.9}]`, 25},
		{"negative replaced by default", `[{"name": "x", "prepTime": -5}]`, 15},
		{"string with leading digits parsed", `[{"name": "x", "prepTime": "15 minutes"}]`, 15},
		{"non-numeric string replaced by default", `[{"name": "x", "prepTime": "soon"}]`, 15},
		{"null replaced by default", `[{"name": "x", "prepTime": null}]`, 15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recipes, err := service.ParseRecipeResponse(tc.json)
			require.NoError(t, err)
			require.Len(t, recipes, 1)
			assert.Equal(t, tc.want, recipes[0].PrepTime)
		})
	}
}

func TestIngredientEntry(t *testing.T) {
	t.Run("unmarshals free text", func(t *testing.T) {
		var e service.IngredientEntry
		require.NoError(t, json.Unmarshal([]byte(`"2 cups flour"`), &e))
		assert.Equal(t, "2 cups flour", e.MatchName())
		assert.Equal(t, "2 cups flour", e.String())
	})

	t.Run("unmarshals structured object", func(t *testing.T) {
		var e service.IngredientEntry
		require.NoError(t, json.Unmarshal([]byte(`{"name": "flour", "amount": "2", "unit": "cups"}`), &e))
		assert.Equal(t, "flour", e.MatchName())
		assert.Equal(t, "2 cups flour", e.String())
	})

	t.Run("numeric amount is stringified", func(t *testing.T) {
		var e service.IngredientEntry
		require.NoError(t, json.Unmarshal([]byte(`{"name": "flour", "amount": 2}`), &e))
		assert.Equal(t, "2", e.Amount)
	})

	t.Run("unknown shapes degrade to raw text", func(t *testing.T) {
		var e service.IngredientEntry
		require.NoError(t, json.Unmarshal([]byte(`{"weird": true}`), &e))
		assert.NotPanics(t, func() { _ = e.MatchName() })
	})

	t.Run("round-trips through JSON", func(t *testing.T) {
		entries := []service.IngredientEntry{
			service.TextIngredient("2 cups flour"),
			{Name: "milk", Amount: "1", Unit: "cup"},
		}

		data, err := json.Marshal(entries)
		require.NoError(t, err)

		var decoded []service.IngredientEntry
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "2 cups flour", decoded[0].MatchName())
		assert.Equal(t, "milk", decoded[1].Name)
		assert.Equal(t, "1", decoded[1].Amount)
	})
}
