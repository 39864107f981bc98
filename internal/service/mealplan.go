package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fridgechef/backend/internal/models"
)

// MealPlanOptions tune a weekly meal plan request.
type MealPlanOptions struct {
	Days        int `json:"days"`
	MealsPerDay int `json:"meals_per_day"`
}

// MealPlan is a multi-day plan built around the fridge contents, plus a
// shopping list for what's missing.
type MealPlan struct {
	Days         []MealPlanDay `json:"mealPlan"`
	ShoppingList []string      `json:"shoppingList"`
}

type MealPlanDay struct {
	Day   int           `json:"day"`
	Meals []PlannedMeal `json:"meals"`
}

type PlannedMeal struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PrepTime        int      `json:"prepTime"`
	Calories        int      `json:"calories"`
	MainIngredients []string `json:"mainIngredients"`
}

// GenerateMealPlan asks the API for a meal plan prioritizing ingredients
// that are about to expire.
func (s *GeminiService) GenerateMealPlan(ctx context.Context, items []models.FridgeItem, opts MealPlanOptions) (*MealPlan, error) {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.MealsPerDay <= 0 {
		opts.MealsPerDay = 3
	}

	ingredients := make([]string, 0, len(items))
	for _, item := range items {
		ingredients = append(ingredients, item.Name)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Create a %d-day meal plan using these ingredients I have:\n", opts.Days))
	b.WriteString(strings.Join(ingredients, ", "))
	b.WriteString(fmt.Sprintf("\n\nFor each day, suggest %d meals (breakfast, lunch, dinner).\n", opts.MealsPerDay))
	b.WriteString("Prioritize using ingredients that might expire soon.\n\n")
	b.WriteString(`Return the response as a JSON object with this structure:
{
  "mealPlan": [
    {
      "day": 1,
      "meals": [
        {
          "type": "breakfast",
          "name": "Recipe Name",
          "description": "Brief description",
          "prepTime": 15,
          "calories": 300,
          "mainIngredients": ["ingredient1", "ingredient2"]
        }
      ]
    }
  ],
  "shoppingList": ["items you might need to buy"]
}

Only return the JSON object, no other text.
`)

	text, err := s.generateWithRetry(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return parseMealPlanResponse(text)
}

// parseMealPlanResponse extracts the JSON object from raw generated text,
// with the same fence-stripping and slicing tolerance as the recipe
// normalizer.
func parseMealPlanResponse(raw string) (*MealPlan, error) {
	cleaned := strings.TrimSpace(stripCodeFences(raw))

	var plan MealPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return nil, &RecipeParseError{Raw: raw, Err: errors.New("no JSON object in response")}
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &plan); err != nil {
			return nil, &RecipeParseError{Raw: raw, Err: err}
		}
	}

	if plan.Days == nil {
		plan.Days = []MealPlanDay{}
	}
	if plan.ShoppingList == nil {
		plan.ShoppingList = []string{}
	}
	for i := range plan.Days {
		if plan.Days[i].Meals == nil {
			plan.Days[i].Meals = []PlannedMeal{}
		}
	}
	return &plan, nil
}
