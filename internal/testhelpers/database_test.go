package testhelpers_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/testhelpers"
)

func TestPostgresDatabase(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, db.Create(&models.User{
		ID:           owner,
		Name:         "Owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
	}).Error)

	svc := service.NewRecipeService(db)

	t.Run("recipes persist with jsonb arrays and vector embeddings", func(t *testing.T) {
		created, err := svc.CreateRecipe(ctx, owner, &models.Recipe{
			Name:         "Tomato Soup",
			Description:  "Simple tomato soup",
			Ingredients:  models.JSONBStringArray{"4 tomatoes", "1 onion"},
			Instructions: models.JSONBStringArray{"Chop", "Simmer"},
			Tags:         models.JSONBStringArray{"soup"},
			IsPublic:     true,
		})
		require.NoError(t, err)

		var loaded models.Recipe
		require.NoError(t, db.First(&loaded, "id = ?", created.ID).Error)
		assert.Equal(t, models.JSONBStringArray{"4 tomatoes", "1 onion"}, loaded.Ingredients)
		assert.Len(t, loaded.Embedding.Slice(), 3)
	})

	t.Run("search orders keyword matches by embedding distance", func(t *testing.T) {
		_, err := svc.CreateRecipe(ctx, owner, &models.Recipe{
			Name:     "Tomato Tart",
			IsPublic: true,
		})
		require.NoError(t, err)

		found, err := svc.SearchRecipes(ctx, owner, "tomato", "")
		require.NoError(t, err)
		require.Len(t, found, 2)
		for _, r := range found {
			assert.Contains(t, []string{"Tomato Soup", "Tomato Tart"}, r.Name)
		}
	})
}
