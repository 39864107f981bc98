package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/service"
)

// Services bundles everything the API surface depends on. GeminiService and
// ImageService may be nil when their credentials are absent; the affected
// endpoints then answer 503 instead of taking the whole API down.
type Services struct {
	Auth      *service.AuthService
	Fridge    *service.FridgeService
	Recipes   *service.RecipeService
	Nutrition *service.NutritionService
	Profile   *service.ProfileService
	Gemini    *service.GeminiService
	Cache     *service.GenerationCache
	Images    *service.ImageService
}

// NewServices wires the full service set from shared infrastructure.
func NewServices(ctx context.Context, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	images, err := service.NewImageService(ctx, cfg)
	if err != nil {
		logger.Warn("image storage disabled", zap.Error(err))
		images = nil
	}

	gemini, err := service.NewGeminiService(cfg, logger)
	if err != nil {
		logger.Warn("recipe generation disabled", zap.Error(err))
		gemini = nil
	}

	return &Services{
		Auth:      service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Fridge:    service.NewFridgeService(db),
		Recipes:   service.NewRecipeService(db),
		Nutrition: service.NewNutritionService(db),
		Profile:   service.NewProfileService(db, images),
		Gemini:    gemini,
		Cache:     service.NewGenerationCache(redisClient),
		Images:    images,
	}
}

// RegisterRoutes mounts all API routes under /api/v1.
func RegisterRoutes(router *gin.Engine, svcs *Services, redisClient *redis.Client, logger *zap.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	authRequired := middleware.AuthMiddleware(svcs.Auth)
	generationLimit := middleware.NewGenerationRateLimiter(redisClient).Middleware()

	NewAuthHandler(svcs.Auth).RegisterRoutes(v1, authRequired)

	protected := v1.Group("")
	protected.Use(authRequired)

	NewFridgeHandler(svcs.Fridge, svcs.Images).RegisterRoutes(protected)
	NewRecipeHandler(svcs.Recipes, svcs.Fridge, svcs.Profile, svcs.Gemini, svcs.Cache, svcs.Nutrition, logger).
		RegisterRoutes(protected, generationLimit)
	NewNutritionHandler(svcs.Nutrition).RegisterRoutes(protected)
	NewProfileHandler(svcs.Profile).RegisterRoutes(protected)
}
