package service_test

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

func TestRecipeService(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	svc := service.NewRecipeService(db)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	pancakes, err := svc.CreateRecipe(ctx, owner, &models.Recipe{
		Name:        "Pancakes",
		Description: "Fluffy breakfast pancakes",
		Ingredients: models.JSONBStringArray{"2 cups flour", "1 cup milk", "2 eggs"},
		Tags:        models.JSONBStringArray{"breakfast", "quick"},
		IsPublic:    true,
	})
	require.NoError(t, err)

	private, err := svc.CreateRecipe(ctx, owner, &models.Recipe{
		Name:     "Secret Sauce",
		IsPublic: false,
	})
	require.NoError(t, err)

	t.Run("create assigns id, owner and embedding", func(t *testing.T) {
		assert.NotEqual(t, uuid.Nil, pancakes.ID)
		assert.Equal(t, owner, pancakes.CreatedBy)
		assert.NotEmpty(t, pancakes.Embedding.Slice())
	})

	t.Run("private recipes are hidden from other users", func(t *testing.T) {
		_, err := svc.GetRecipe(ctx, stranger, private.ID)
		assert.ErrorIs(t, err, service.ErrRecipeNotFound)

		got, err := svc.GetRecipe(ctx, owner, private.ID)
		require.NoError(t, err)
		assert.Equal(t, "Secret Sauce", got.Name)
	})

	t.Run("keyword search matches name case-insensitively", func(t *testing.T) {
		found, err := svc.SearchRecipes(ctx, stranger, "PANCAKE", "")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Pancakes", found[0].Name)
	})

	t.Run("tag filter narrows results", func(t *testing.T) {
		found, err := svc.SearchRecipes(ctx, stranger, "", "breakfast")
		require.NoError(t, err)
		require.Len(t, found, 1)

		found, err = svc.SearchRecipes(ctx, stranger, "", "dessert")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("only the owner can update or delete", func(t *testing.T) {
		_, err := svc.UpdateRecipe(ctx, stranger, pancakes.ID, map[string]interface{}{"name": "Stolen"})
		assert.ErrorIs(t, err, service.ErrNotRecipeOwner)

		err = svc.DeleteRecipe(ctx, stranger, pancakes.ID)
		assert.ErrorIs(t, err, service.ErrNotRecipeOwner)
	})

	t.Run("update refreshes the embedding when the name changes", func(t *testing.T) {
		before := pancakes.Embedding.Slice()
		updated, err := svc.UpdateRecipe(ctx, owner, pancakes.ID, map[string]interface{}{
			"name": "Buttermilk Pancakes",
		})
		require.NoError(t, err)
		assert.Equal(t, "Buttermilk Pancakes", updated.Name)
		assert.NotEqual(t, before, updated.Embedding.Slice())
	})

	t.Run("saved recipes round-trip and deduplicate", func(t *testing.T) {
		require.NoError(t, svc.SaveRecipe(ctx, stranger, pancakes.ID))
		require.NoError(t, svc.SaveRecipe(ctx, stranger, pancakes.ID))

		isSaved, err := svc.IsSaved(ctx, stranger, pancakes.ID)
		require.NoError(t, err)
		assert.True(t, isSaved)

		saved, err := svc.ListSavedRecipes(ctx, stranger)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, pancakes.ID, saved[0].ID)

		require.NoError(t, svc.UnsaveRecipe(ctx, stranger, pancakes.ID))
		saved, err = svc.ListSavedRecipes(ctx, stranger)
		require.NoError(t, err)
		assert.Empty(t, saved)

		isSaved, err = svc.IsSaved(ctx, stranger, pancakes.ID)
		require.NoError(t, err)
		assert.False(t, isSaved)
	})

	t.Run("saving an invisible recipe is rejected", func(t *testing.T) {
		err := svc.SaveRecipe(ctx, stranger, private.ID)
		assert.ErrorIs(t, err, service.ErrRecipeNotFound)
	})

	t.Run("match against fridge scores stored recipes", func(t *testing.T) {
		items := []models.FridgeItem{{Name: "flour"}, {Name: "milk"}, {Name: "eggs"}}

		matches, err := svc.MatchAgainstFridge(ctx, owner, items)
		require.NoError(t, err)
		require.NotEmpty(t, matches)

		assert.Equal(t, "Buttermilk Pancakes", matches[0].Recipe.Name)
		assert.Equal(t, 100, matches[0].MatchPercentage)
	})

	t.Run("delete removes the recipe and its bookmarks", func(t *testing.T) {
		require.NoError(t, svc.SaveRecipe(ctx, owner, pancakes.ID))
		require.NoError(t, svc.DeleteRecipe(ctx, owner, pancakes.ID))

		_, err := svc.GetRecipe(ctx, owner, pancakes.ID)
		assert.ErrorIs(t, err, service.ErrRecipeNotFound)

		saved, err := svc.ListSavedRecipes(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})
}
