package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
)

type RecipeHandler struct {
	recipeService    *service.RecipeService
	fridgeService    *service.FridgeService
	profileService   *service.ProfileService
	geminiService    *service.GeminiService
	generationCache  *service.GenerationCache
	nutritionService *service.NutritionService
	logger           *zap.Logger
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	fridgeService *service.FridgeService,
	profileService *service.ProfileService,
	geminiService *service.GeminiService,
	generationCache *service.GenerationCache,
	nutritionService *service.NutritionService,
	logger *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:    recipeService,
		fridgeService:    fridgeService,
		profileService:   profileService,
		geminiService:    geminiService,
		generationCache:  generationCache,
		nutritionService: nutritionService,
		logger:           logger,
	}
}

// RegisterRoutes mounts the recipe endpoints. Generation endpoints sit
// behind the rate limiter because each request costs an external API call.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, generationLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/saved", h.ListSavedRecipes)
		recipes.GET("/match", h.MatchRecipes)
		recipes.POST("/generate", generationLimit, h.GenerateRecipes)
		recipes.GET("/generated/:id", h.GetGeneration)
		recipes.POST("/mealplan", generationLimit, h.GenerateMealPlan)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/save", h.SaveRecipe)
		recipes.GET("/:id/save", h.IsSaved)
		recipes.DELETE("/:id/save", h.UnsaveRecipe)
		recipes.POST("/:id/variations", generationLimit, h.GenerateVariations)
		recipes.POST("/:id/log", h.LogRecipeAsMeal)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	query := c.Query("q")
	tag := c.Query("tag")

	var (
		recipes []models.Recipe
		err     error
	)
	if query != "" || tag != "" {
		recipes, err = h.recipeService.SearchRecipes(c.Request.Context(), userID, query, tag)
	} else {
		recipes, err = h.recipeService.ListRecipes(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	delete(updates, "created_by")
	delete(updates, "embedding")

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, updates)
	if err != nil {
		writeRecipeError(c, err, "failed to update recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		writeRecipeError(c, err, "failed to delete recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted", "id": id})
}

func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.SaveRecipe(c.Request.Context(), userID, id); err != nil {
		writeRecipeError(c, err, "failed to save recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe saved", "id": id})
}

func (h *RecipeHandler) IsSaved(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	saved, err := h.recipeService.IsSaved(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check saved state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved, "id": id})
}

func (h *RecipeHandler) UnsaveRecipe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.UnsaveRecipe(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unsave recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe unsaved", "id": id})
}

func (h *RecipeHandler) ListSavedRecipes(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	recipes, err := h.recipeService.ListSavedRecipes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch saved recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// MatchRecipes scores stored recipes against the current fridge contents.
func (h *RecipeHandler) MatchRecipes(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	items, err := h.fridgeService.ListItems(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fridge items"})
		return
	}

	matches, err := h.recipeService.MatchAgainstFridge(c.Request.Context(), userID, items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to match recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GenerateRecipes runs the full pipeline: fridge contents plus the user's
// dietary preferences feed the generation prompt, the results are scored
// against the fridge and cached for later retrieval.
func (h *RecipeHandler) GenerateRecipes(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	if h.geminiService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe generation is not configured"})
		return
	}

	var opts service.GenerationOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.fridgeService.ListItems(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fridge items"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fridge is empty, add some ingredients first"})
		return
	}

	if len(opts.DietaryPreferences) == 0 {
		prefs, err := h.profileService.DietaryPreferences(c.Request.Context(), userID)
		if err == nil {
			for _, p := range prefs {
				opts.DietaryPreferences = append(opts.DietaryPreferences, p.PromptName())
			}
		}
	}

	recipes, err := h.geminiService.GenerateRecipes(c.Request.Context(), items, opts)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	recipes = service.MatchRecipes(recipes, items)

	gen, err := h.generationCache.Save(c.Request.Context(), userID, opts, recipes)
	if err != nil {
		h.logger.Warn("failed to cache generation", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"recipes": recipes})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": gen.ID, "recipes": gen.Recipes})
}

// GetGeneration re-fetches a cached generation batch.
func (h *RecipeHandler) GetGeneration(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	gen, err := h.generationCache.Get(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, service.ErrGenerationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation not found or expired"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch generation"})
		return
	}

	c.JSON(http.StatusOK, gen)
}

// GenerateVariations asks for a variation of a stored recipe using what is
// in the fridge.
func (h *RecipeHandler) GenerateVariations(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	if h.geminiService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe generation is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	items, err := h.fridgeService.ListItems(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fridge items"})
		return
	}

	available := make([]string, 0, len(items))
	for _, item := range items {
		available = append(available, item.Name)
	}

	variations, err := h.geminiService.GenerateVariations(c.Request.Context(), recipe.Name, available)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	variations = service.MatchRecipes(variations, items)
	c.JSON(http.StatusOK, gin.H{"recipes": variations})
}

// GenerateMealPlan builds a multi-day meal plan from the fridge contents.
func (h *RecipeHandler) GenerateMealPlan(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	if h.geminiService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe generation is not configured"})
		return
	}

	var opts service.MealPlanOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.fridgeService.ListItems(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fridge items"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fridge is empty, add some ingredients first"})
		return
	}

	plan, err := h.geminiService.GenerateMealPlan(c.Request.Context(), items, opts)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

type LogRecipeRequest struct {
	MealType string  `json:"meal_type"`
	Servings float64 `json:"servings"`
}

// LogRecipeAsMeal records a stored recipe as a meal for today.
func (h *RecipeHandler) LogRecipeAsMeal(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req LogRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	meal, err := h.nutritionService.LogMealFromRecipe(c.Request.Context(), userID, recipe, req.MealType, req.Servings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log meal"})
		return
	}

	c.JSON(http.StatusCreated, meal)
}

// writeGenerationError maps generation pipeline failures to HTTP statuses.
func (h *RecipeHandler) writeGenerationError(c *gin.Context, err error) {
	var (
		configErr    *service.ConfigurationError
		transient    *service.TransientAPIError
		parseErr     *service.RecipeParseError
		nonRetryable *service.NonRetryableAPIError
	)

	switch {
	case errors.As(err, &configErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe generation is not configured"})
	case errors.As(err, &transient):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "generation service is busy, try again later"})
	case errors.As(err, &parseErr):
		h.logger.Error("unparseable generation response", zap.String("raw", parseErr.Raw))
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation service returned an unusable response"})
	case errors.As(err, &nonRetryable):
		h.logger.Error("generation request rejected", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation service rejected the request"})
	default:
		h.logger.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate recipes"})
	}
}

func writeRecipeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	case errors.Is(err, service.ErrNotRecipeOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the recipe owner"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
