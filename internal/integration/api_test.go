package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/api"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/testhelpers"
)

// generatedBatch is what the fake Gemini endpoint answers with: two
// recipes, one fully coverable by the seeded fridge and one not.
const generatedBatch = `[
  {
    "name": "Chicken Fried Rice",
    "description": "Quick weeknight fried rice",
    "ingredients": ["2 chicken breasts", "2 cups rice", "2 eggs"],
    "instructions": ["Cook rice", "Fry chicken", "Combine"],
    "prepTime": 10,
    "cookTime": 20,
    "servings": 2,
    "difficulty": "easy"
  },
  {
    "name": "Beef Stew",
    "ingredients": ["500 g beef", "2 carrots"]
  }
]`

func fakeGeminiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "```json\n" + generatedBatch + "\n```"}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestRouter assembles the full HTTP stack on SQLite. Redis points at a
// closed port, which exercises the fail-open paths of the rate limiter and
// the generation cache.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDatabase(t)
	gemini := fakeGeminiServer(t)

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "integration-secret", TokenTTL: time.Hour},
		Gemini: config.GeminiConfig{
			APIKey:         "test-key",
			Model:          "gemini-2.5-flash",
			BaseURL:        gemini.URL,
			MaxRetries:     2,
			RetryBaseDelay: time.Millisecond,
			Timeout:        5 * time.Second,
		},
	}

	logger := zap.NewNop()
	geminiService, err := service.NewGeminiService(cfg, logger)
	require.NoError(t, err)

	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { redisClient.Close() })

	svcs := &api.Services{
		Auth:      service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Fridge:    service.NewFridgeService(db),
		Recipes:   service.NewRecipeService(db),
		Nutrition: service.NewNutritionService(db),
		Profile:   service.NewProfileService(db, nil),
		Gemini:    geminiService,
		Cache:     service.NewGenerationCache(redisClient),
	}

	router := gin.New()
	api.RegisterRoutes(router, svcs, redisClient, logger)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
		"username": "testuser",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAPIEndToEnd(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "cook@example.com")

	t.Run("health check is open", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("protected routes reject anonymous requests", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/fridge", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("generation with an empty fridge is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fridge items round-trip", func(t *testing.T) {
		for _, name := range []string{"chicken breast", "rice", "eggs"} {
			w := doJSON(t, router, http.MethodPost, "/api/v1/fridge", token, gin.H{"name": name})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := doJSON(t, router, http.MethodGet, "/api/v1/fridge", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 3)
	})

	t.Run("generation scores recipes against the fridge", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes/generate", token, gin.H{
			"number_of_recipes": 2,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Recipes []struct {
				Name               string   `json:"name"`
				MatchPercentage    int      `json:"matchPercentage"`
				MissingIngredients []string `json:"missingIngredients"`
			} `json:"recipes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Recipes, 2)

		assert.Equal(t, "Chicken Fried Rice", resp.Recipes[0].Name)
		assert.Equal(t, 100, resp.Recipes[0].MatchPercentage)
		assert.Equal(t, "Beef Stew", resp.Recipes[1].Name)
		assert.Equal(t, 0, resp.Recipes[1].MatchPercentage)
		assert.Len(t, resp.Recipes[1].MissingIngredients, 2)
	})

	t.Run("stored recipe lifecycle over HTTP", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", token, gin.H{
			"name":        "Egg Fried Rice",
			"description": "Uses up leftover rice",
			"ingredients": []string{"2 cups rice", "3 eggs"},
			"is_public":   true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)

		w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/match", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var matches struct {
			Matches []struct {
				Recipe struct {
					Name string `json:"name"`
				} `json:"recipe"`
				MatchPercentage int `json:"matchPercentage"`
			} `json:"matches"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
		require.NotEmpty(t, matches.Matches)
		assert.Equal(t, "Egg Fried Rice", matches.Matches[0].Recipe.Name)
		assert.Equal(t, 100, matches.Matches[0].MatchPercentage)

		w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/save", created.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/saved", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Egg Fried Rice")

		w = doJSON(t, router, http.MethodDelete, "/api/v1/recipes/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("nutrition summary reflects logged meals", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/nutrition/meals", token, gin.H{
			"name":      "Breakfast burrito",
			"meal_type": "breakfast",
			"calories":  450,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, "/api/v1/nutrition/water", token, gin.H{"amount_ml": 500})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodGet, "/api/v1/nutrition/summary", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summary struct {
			Calories int `json:"calories"`
			WaterML  int `json:"waterMl"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, 450, summary.Calories)
		assert.Equal(t, 500, summary.WaterML)
	})

	t.Run("login returns a usable token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "cook@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		w = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cook@example.com")
	})
}
