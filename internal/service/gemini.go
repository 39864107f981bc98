package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/models"
)

const (
	// Requested recipe counts are clamped to keep generation latency and
	// token cost bounded.
	maxRecipesPerRequest = 2
	maxInstructionSteps  = 5

	defaultMaxRetries = 5
	defaultBaseDelay  = 5 * time.Second
)

// TextGenerator produces raw text for a prompt. The production
// implementation talks to the Gemini API; tests inject fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenerationOptions tune a recipe generation request.
type GenerationOptions struct {
	NumberOfRecipes    int      `json:"number_of_recipes"`
	DietaryPreferences []string `json:"dietary_preferences"`
	MealType           string   `json:"meal_type"`
	MaxCookTime        int      `json:"max_cook_time"`
	Difficulty         string   `json:"difficulty"`
	CuisineType        string   `json:"cuisine_type"`
}

// GeminiService generates recipes from fridge contents via the Gemini API.
// Each call runs its own retry loop and shares no mutable state with other
// calls, so concurrent use needs no locking.
type GeminiService struct {
	transport  TextGenerator
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration

	// sleep waits between retry attempts; injected in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeminiService creates a GeminiService from configuration. A missing
// API key is a ConfigurationError here, at construction, rather than on
// first use.
func NewGeminiService(cfg *config.Config, logger *zap.Logger) (*GeminiService, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, &ConfigurationError{Reason: "Gemini API key not configured"}
	}

	maxRetries := cfg.Gemini.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.Gemini.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	return &GeminiService{
		transport:  newGeminiTransport(cfg),
		logger:     logger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateRecipes builds a prompt from the fridge contents and options,
// calls the generation API with retry, and normalizes the response.
func (s *GeminiService) GenerateRecipes(ctx context.Context, items []models.FridgeItem, opts GenerationOptions) ([]GeneratedRecipe, error) {
	prompt := buildRecipePrompt(items, opts)

	text, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseRecipeResponse(text)
}

// GenerateSingleRecipe suggests one recipe for the given ingredient names.
func (s *GeminiService) GenerateSingleRecipe(ctx context.Context, ingredientNames []string, cuisineType string) (*GeneratedRecipe, error) {
	items := make([]models.FridgeItem, 0, len(ingredientNames))
	for _, name := range ingredientNames {
		items = append(items, models.FridgeItem{Name: name})
	}

	recipes, err := s.GenerateRecipes(ctx, items, GenerationOptions{
		NumberOfRecipes: 1,
		CuisineType:     cuisineType,
	})
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

// GenerateVariations suggests a variation of a known dish that mostly uses
// the available ingredients.
func (s *GeminiService) GenerateVariations(ctx context.Context, dishName string, availableIngredients []string) ([]GeneratedRecipe, error) {
	prompt := buildVariationPrompt(dishName, availableIngredients)

	text, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseRecipeResponse(text)
}

// generateWithRetry invokes the transport up to maxRetries times. Only
// transient failures (rate limiting, quota, empty responses) are retried,
// with exponential backoff of 2^attempt * baseDelay between attempts. The
// wait never precedes the first attempt and is cancellable through ctx.
// After exhausting the budget the last error is surfaced, never swallowed.
func (s *GeminiService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		text, err := s.transport.GenerateText(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				err = &EmptyResponseError{}
			} else {
				return text, nil
			}
		}

		lastErr = err
		if !IsRetryable(err) || attempt == s.maxRetries {
			break
		}

		wait := time.Duration(1<<uint(attempt)) * s.baseDelay
		s.logger.Warn("transient generation failure, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.maxRetries),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := s.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// buildRecipePrompt is deterministic for a given (items, opts) pair. It
// instructs the API to answer with a bare JSON array so the normalizer has
// a fighting chance.
func buildRecipePrompt(items []models.FridgeItem, opts GenerationOptions) string {
	ingredients := make([]string, 0, len(items))
	for _, item := range items {
		ingredients = append(ingredients, describeFridgeItem(item))
	}

	count := opts.NumberOfRecipes
	if count <= 0 {
		count = 5
	}
	if count > maxRecipesPerRequest {
		count = maxRecipesPerRequest
	}

	var constraints []string
	if len(opts.DietaryPreferences) > 0 {
		constraints = append(constraints, "Dietary preferences: "+strings.Join(opts.DietaryPreferences, ", "))
	}
	if opts.MealType != "" {
		constraints = append(constraints, "Meal type: "+opts.MealType)
	}
	if opts.MaxCookTime > 0 {
		constraints = append(constraints, fmt.Sprintf("Maximum cooking time: %d minutes", opts.MaxCookTime))
	}
	if opts.Difficulty != "" {
		constraints = append(constraints, "Difficulty level: "+opts.Difficulty)
	}
	if opts.CuisineType != "" {
		constraints = append(constraints, "Cuisine type: "+opts.CuisineType)
	}

	var b strings.Builder
	b.WriteString("I have these ingredients:\n")
	b.WriteString(strings.Join(ingredients, ", "))
	b.WriteString(fmt.Sprintf("\n\nSuggest %d simple recipes using mostly these ingredients.\n", count))
	if len(constraints) > 0 {
		b.WriteString(strings.Join(constraints, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(recipeSchemaInstructions)
	return b.String()
}

func buildVariationPrompt(dishName string, availableIngredients []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("I want to make %q using these ingredients:\n", dishName))
	b.WriteString(strings.Join(availableIngredients, ", "))
	b.WriteString("\n\nSuggest 1 simple variation of this dish that mostly uses my ingredients.\n")
	b.WriteString(recipeSchemaInstructions)
	return b.String()
}

var recipeSchemaInstructions = fmt.Sprintf(`
Return ONLY a JSON array in this format:
[
  {
    "id": "ai_1",
    "name": "Recipe name",
    "description": "Short description",
    "prepTime": 10,
    "cookTime": 20,
    "servings": 2,
    "difficulty": "easy",
    "calories": 350,
    "protein": 15,
    "carbs": 45,
    "fat": 12,
    "ingredients": ["ingredient with amount"],
    "instructions": ["Step 1", "Step 2"],
    "tags": ["quick"],
    "usesFromFridge": ["ingredient"],
    "needToBuy": ["ingredient"]
  }
]

Rules:
- Max %d instruction steps
- Short strings only
- No extra text
`, maxInstructionSteps)

// describeFridgeItem renders an item as "name (quantity unit)" when a
// quantity is known.
func describeFridgeItem(item models.FridgeItem) string {
	if item.Quantity <= 0 {
		return item.Name
	}
	qty := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", item.Quantity), "0"), ".")
	if item.Unit != "" {
		return fmt.Sprintf("%s (%s %s)", item.Name, qty, item.Unit)
	}
	return fmt.Sprintf("%s (%s)", item.Name, qty)
}
