package service

import (
	"math"
	"sort"
	"strings"

	"github.com/fridgechef/backend/internal/models"
)

// MatchResult is the coverage of one recipe's ingredient list against a
// fridge inventory.
type MatchResult struct {
	MatchPercentage    int      `json:"matchPercentage"`
	MatchedIngredients []string `json:"matchedIngredients"`
	MissingIngredients []string `json:"missingIngredients"`
}

// MatchIngredients computes how well a recipe's ingredients are covered by
// the given fridge items. Two names match when, after case-folding, either
// is a substring of the other; this is deliberately permissive and does no
// tokenization or unit handling.
//
// Only non-optional entries count toward the percentage. Optional entries
// that match are still reported in MatchedIngredients; optional entries
// that don't match are omitted entirely. An empty required list yields 0,
// never a division error.
//
// Pure function: no side effects, deterministic for a given input order.
func MatchIngredients(ingredients []IngredientEntry, items []models.FridgeItem) MatchResult {
	fridgeNames := make([]string, 0, len(items))
	for _, item := range items {
		fridgeNames = append(fridgeNames, strings.ToLower(item.Name))
	}

	matched := []string{}
	missing := []string{}
	required := 0
	requiredMatched := 0

	for _, entry := range ingredients {
		name := entry.MatchName()
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)

		found := false
		for _, fridgeName := range fridgeNames {
			if strings.Contains(fridgeName, lower) || strings.Contains(lower, fridgeName) {
				found = true
				break
			}
		}

		if entry.Optional {
			if found {
				matched = append(matched, name)
			}
			continue
		}

		required++
		if found {
			requiredMatched++
			matched = append(matched, name)
		} else {
			missing = append(missing, name)
		}
	}

	pct := 0
	if required > 0 {
		pct = int(math.Round(float64(requiredMatched) / float64(required) * 100))
	}

	return MatchResult{
		MatchPercentage:    pct,
		MatchedIngredients: matched,
		MissingIngredients: missing,
	}
}

// MatchRecipes annotates each recipe with its match against the fridge and
// returns the annotated copies sorted descending by match percentage. Ties
// keep their original relative order. The input slice is not mutated.
func MatchRecipes(recipes []GeneratedRecipe, items []models.FridgeItem) []GeneratedRecipe {
	out := make([]GeneratedRecipe, len(recipes))
	for i, r := range recipes {
		result := MatchIngredients(r.Ingredients, items)
		r.MatchPercentage = result.MatchPercentage
		r.MatchedIngredients = result.MatchedIngredients
		r.MissingIngredients = result.MissingIngredients
		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchPercentage > out[j].MatchPercentage
	})
	return out
}
