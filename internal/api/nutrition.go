package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
)

type NutritionHandler struct {
	nutritionService *service.NutritionService
}

func NewNutritionHandler(nutritionService *service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

func (h *NutritionHandler) RegisterRoutes(router *gin.RouterGroup) {
	nutrition := router.Group("/nutrition")
	{
		nutrition.GET("/meals", h.ListMeals)
		nutrition.POST("/meals", h.LogMeal)
		nutrition.PUT("/meals/:id", h.UpdateMeal)
		nutrition.DELETE("/meals/:id", h.DeleteMeal)
		nutrition.GET("/water", h.ListWater)
		nutrition.POST("/water", h.LogWater)
		nutrition.GET("/summary", h.Summary)
	}
}

type LogMealRequest struct {
	Name     string `json:"name" binding:"required"`
	MealType string `json:"meal_type"`
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

// queryDate parses the optional ?date=YYYY-MM-DD parameter, defaulting to
// today.
func queryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func (h *NutritionHandler) ListMeals(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	date, ok := queryDate(c)
	if !ok {
		return
	}

	meals, err := h.nutritionService.MealsByDate(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch meals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *NutritionHandler) LogMeal(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var req LogMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := &models.Meal{
		UserID:   userID,
		Name:     req.Name,
		MealType: req.MealType,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		meal.Date = date
	}

	created, err := h.nutritionService.LogMeal(c.Request.Context(), meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log meal"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *NutritionHandler) UpdateMeal(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	delete(updates, "user_id")

	meal, err := h.nutritionService.UpdateMeal(c.Request.Context(), userID, id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update meal"})
		return
	}

	c.JSON(http.StatusOK, meal)
}

func (h *NutritionHandler) DeleteMeal(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	err = h.nutritionService.DeleteMeal(c.Request.Context(), userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete meal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "meal deleted", "id": id})
}

type LogWaterRequest struct {
	AmountML int `json:"amount_ml" binding:"required,gt=0"`
}

func (h *NutritionHandler) ListWater(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	date, ok := queryDate(c)
	if !ok {
		return
	}

	entries, total, err := h.nutritionService.WaterByDate(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch water intake"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "total_ml": total})
}

func (h *NutritionHandler) LogWater(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var req LogWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.nutritionService.LogWater(c.Request.Context(), userID, req.AmountML)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log water"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *NutritionHandler) Summary(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	date, ok := queryDate(c)
	if !ok {
		return
	}

	summary, err := h.nutritionService.Summary(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
