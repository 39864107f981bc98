package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
)

// NutritionService tracks meals and water intake.
type NutritionService struct {
	db *gorm.DB
}

func NewNutritionService(db *gorm.DB) *NutritionService {
	return &NutritionService{db: db}
}

// LogMeal records a meal. Meal type defaults to snack, the date to today.
func (s *NutritionService) LogMeal(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	if meal.MealType == "" {
		meal.MealType = "snack"
	}
	if meal.Date.IsZero() {
		meal.Date = startOfDay(time.Now())
	}

	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

// LogMealFromRecipe records a meal using a recipe's per-serving nutrition,
// scaled by the serving count.
func (s *NutritionService) LogMealFromRecipe(ctx context.Context, userID uuid.UUID, recipe *models.Recipe, mealType string, servings float64) (*models.Meal, error) {
	if servings <= 0 {
		servings = 1
	}

	perServing := func(total int) int {
		if recipe.Servings <= 0 {
			return total
		}
		return total / recipe.Servings
	}

	meal := &models.Meal{
		UserID:   userID,
		RecipeID: &recipe.ID,
		Name:     recipe.Name,
		MealType: mealType,
		Calories: int(float64(perServing(recipe.Calories)) * servings),
		Protein:  int(float64(perServing(recipe.Protein)) * servings),
		Carbs:    int(float64(perServing(recipe.Carbs)) * servings),
		Fat:      int(float64(perServing(recipe.Fat)) * servings),
	}
	return s.LogMeal(ctx, meal)
}

// MealsByDate returns the user's meals logged on the given day, grouped by
// meal type. Every group is present even when empty.
func (s *NutritionService) MealsByDate(ctx context.Context, userID uuid.UUID, date time.Time) (map[string][]models.Meal, error) {
	meals, err := s.mealsOnDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]models.Meal{
		"breakfast": {},
		"lunch":     {},
		"dinner":    {},
		"snack":     {},
	}
	for _, meal := range meals {
		grouped[meal.MealType] = append(grouped[meal.MealType], meal)
	}
	return grouped, nil
}

// UpdateMeal applies updates to a meal the user owns.
func (s *NutritionService) UpdateMeal(ctx context.Context, userID, id uuid.UUID, updates map[string]interface{}) (*models.Meal, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var meal models.Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes a meal the user owns.
func (s *NutritionService) DeleteMeal(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Meal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LogWater records a water intake entry in milliliters for today.
func (s *NutritionService) LogWater(ctx context.Context, userID uuid.UUID, amountML int) (*models.WaterEntry, error) {
	entry := &models.WaterEntry{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     startOfDay(time.Now()),
		AmountML: amountML,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// WaterByDate returns the entries and the total intake for the given day.
func (s *NutritionService) WaterByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.WaterEntry, int, error) {
	var entries []models.WaterEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, startOfDay(date)).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	total := 0
	for _, e := range entries {
		total += e.AmountML
	}
	return entries, total, nil
}

// DailySummary aggregates a day's meals and water against the user's goals.
type DailySummary struct {
	Date             string  `json:"date"`
	Calories         int     `json:"calories"`
	Protein          int     `json:"protein"`
	Carbs            int     `json:"carbs"`
	Fat              int     `json:"fat"`
	WaterML          int     `json:"waterMl"`
	CalorieGoal      int     `json:"calorieGoal"`
	WaterGoalML      int     `json:"waterGoalMl"`
	CaloriesProgress float64 `json:"caloriesProgress"`
	WaterProgress    float64 `json:"waterProgress"`
	MealCount        int     `json:"mealCount"`
}

// Summary computes the daily nutrition summary for the given day.
func (s *NutritionService) Summary(ctx context.Context, userID uuid.UUID, date time.Time) (*DailySummary, error) {
	meals, err := s.mealsOnDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	_, waterTotal, err := s.WaterByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:      startOfDay(date).Format("2006-01-02"),
		WaterML:   waterTotal,
		MealCount: len(meals),
	}
	for _, meal := range meals {
		summary.Calories += meal.Calories
		summary.Protein += meal.Protein
		summary.Carbs += meal.Carbs
		summary.Fat += meal.Fat
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err == nil {
		summary.CalorieGoal = profile.DailyCalorieGoal
		summary.WaterGoalML = profile.DailyWaterGoalML
	}

	if summary.CalorieGoal > 0 {
		summary.CaloriesProgress = float64(summary.Calories) / float64(summary.CalorieGoal)
	}
	if summary.WaterGoalML > 0 {
		summary.WaterProgress = float64(summary.WaterML) / float64(summary.WaterGoalML)
	}
	return summary, nil
}

func (s *NutritionService) mealsOnDay(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, startOfDay(date)).
		Order("created_at ASC").
		Find(&meals).Error
	return meals, err
}
