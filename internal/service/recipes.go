package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotRecipeOwner = errors.New("not the recipe owner")
)

// RecipeService handles stored recipes: CRUD, search, saved recipes and
// matching against the fridge.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// ListRecipes returns public recipes plus the user's own, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("is_public = ? OR created_by = ?", true, userID).
		Order("created_at DESC").
		Find(&recipes).Error
	return recipes, err
}

// SearchRecipes filters by a case-insensitive keyword over name, description
// and ingredients, optionally by tag. On Postgres the keyword matches are
// ordered by embedding distance to the query so closer names surface first.
func (s *RecipeService) SearchRecipes(ctx context.Context, userID uuid.UUID, query, tag string) ([]models.Recipe, error) {
	tx := s.db.WithContext(ctx).
		Where("is_public = ? OR created_by = ?", true, userID)

	postgres := s.db.Dialector.Name() == "postgres"

	if tag != "" {
		like := "%" + strings.ToLower(tag) + "%"
		if postgres {
			tx = tx.Where("LOWER(tags::text) LIKE ?", like)
		} else {
			tx = tx.Where("LOWER(tags) LIKE ?", like)
		}
	}

	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		if postgres {
			vec := GenerateEmbedding(query)
			subQuery := s.db.Model(&models.Recipe{}).
				Select("id, embedding <-> ? as similarity", vec).
				Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients::text) LIKE ?",
					like, like, like)
			tx = tx.Joins("JOIN (?) as search ON recipes.id = search.id", subQuery).
				Order("search.similarity ASC")
		} else {
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients) LIKE ?",
				like, like, like)
		}
	} else {
		tx = tx.Order("created_at DESC")
	}

	var recipes []models.Recipe
	err := tx.Find(&recipes).Error
	return recipes, err
}

// GetRecipe loads a recipe visible to the user.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		First(&recipe, "id = ? AND (is_public = ? OR created_by = ?)", id, true, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe stores a recipe owned by the user, computing its embedding
// from name and description.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, recipe *models.Recipe) (*models.Recipe, error) {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	recipe.CreatedBy = userID
	recipe.Embedding = GenerateEmbedding(recipe.Name + " " + recipe.Description)

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe applies updates to a recipe the user owns and refreshes the
// embedding when name or description changed.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, updates map[string]interface{}) (*models.Recipe, error) {
	recipe, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(recipe).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).First(recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}

	_, nameChanged := updates["name"]
	_, descChanged := updates["description"]
	if nameChanged || descChanged {
		recipe.Embedding = GenerateEmbedding(recipe.Name + " " + recipe.Description)
		if err := s.db.WithContext(ctx).Model(recipe).Update("embedding", recipe.Embedding).Error; err != nil {
			return nil, err
		}
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe the user owns, together with any saved-recipe
// references to it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.SavedRecipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// SaveRecipe bookmarks a recipe for the user. Saving twice is a no-op.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.GetRecipe(ctx, userID, recipeID); err != nil {
		return err
	}

	var existing models.SavedRecipe
	err := s.db.WithContext(ctx).
		First(&existing, "user_id = ? AND recipe_id = ?", userID, recipeID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	saved := models.SavedRecipe{
		ID:       uuid.New(),
		UserID:   userID,
		RecipeID: recipeID,
	}
	return s.db.WithContext(ctx).Create(&saved).Error
}

// IsSaved reports whether the user has bookmarked the recipe.
func (s *RecipeService) IsSaved(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UnsaveRecipe removes a bookmark.
func (s *RecipeService) UnsaveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.SavedRecipe{}).Error
}

// ListSavedRecipes returns the recipes the user bookmarked, most recently
// saved first.
func (s *RecipeService) ListSavedRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var saved []models.SavedRecipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}

	if len(saved) == 0 {
		return []models.Recipe{}, nil
	}

	ids := make([]uuid.UUID, 0, len(saved))
	for _, sr := range saved {
		ids = append(ids, sr.RecipeID)
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	ordered := make([]models.Recipe, 0, len(saved))
	for _, sr := range saved {
		if r, ok := byID[sr.RecipeID]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// StoredRecipeMatch pairs a stored recipe with its fridge match.
type StoredRecipeMatch struct {
	Recipe models.Recipe `json:"recipe"`
	MatchResult
}

// MatchAgainstFridge scores the recipes visible to the user against their
// fridge contents and returns them best match first.
func (s *RecipeService) MatchAgainstFridge(ctx context.Context, userID uuid.UUID, items []models.FridgeItem) ([]StoredRecipeMatch, error) {
	recipes, err := s.ListRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := make([]StoredRecipeMatch, 0, len(recipes))
	for _, recipe := range recipes {
		ingredients := make([]IngredientEntry, 0, len(recipe.Ingredients))
		for _, name := range recipe.Ingredients {
			ingredients = append(ingredients, TextIngredient(name))
		}
		matches = append(matches, StoredRecipeMatch{
			Recipe:      recipe,
			MatchResult: MatchIngredients(ingredients, items),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchPercentage > matches[j].MatchPercentage
	})
	return matches, nil
}

func (s *RecipeService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	if recipe.CreatedBy != userID {
		return nil, ErrNotRecipeOwner
	}
	return &recipe, nil
}
