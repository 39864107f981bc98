package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
)

type FridgeHandler struct {
	fridgeService *service.FridgeService
	imageService  *service.ImageService
}

func NewFridgeHandler(fridgeService *service.FridgeService, imageService *service.ImageService) *FridgeHandler {
	return &FridgeHandler{
		fridgeService: fridgeService,
		imageService:  imageService,
	}
}

func (h *FridgeHandler) RegisterRoutes(router *gin.RouterGroup) {
	fridge := router.Group("/fridge")
	{
		fridge.GET("", h.ListItems)
		fridge.GET("/expiring", h.ListExpiring)
		fridge.GET("/expired", h.ListExpired)
		fridge.GET("/:id", h.GetItem)
		fridge.POST("", h.AddItem)
		fridge.PUT("/:id", h.UpdateItem)
		fridge.POST("/:id/consume", h.ConsumeItem)
		fridge.POST("/:id/image", h.UploadItemImage)
		fridge.DELETE("/:id", h.DeleteItem)
	}
}

type AddItemRequest struct {
	Name         string     `json:"name" binding:"required"`
	Category     string     `json:"category"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	PurchaseDate *time.Time `json:"purchase_date"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Notes        string     `json:"notes"`
	Calories     int        `json:"calories"`
	Protein      int        `json:"protein"`
	Carbs        int        `json:"carbs"`
	Fat          int        `json:"fat"`
}

func (h *FridgeHandler) ListItems(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var (
		items []models.FridgeItem
		err   error
	)
	if category := c.Query("category"); category != "" {
		items, err = h.fridgeService.ListByCategory(c.Request.Context(), userID, category)
	} else {
		items, err = h.fridgeService.ListItems(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fridge items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *FridgeHandler) ListExpiring(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	days := 3
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	items, err := h.fridgeService.ListExpiring(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch expiring items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "days": days})
}

func (h *FridgeHandler) ListExpired(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	items, err := h.fridgeService.ListExpired(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch expired items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *FridgeHandler) GetItem(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, err := h.fridgeService.GetItem(c.Request.Context(), userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *FridgeHandler) AddItem(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &models.FridgeItem{
		UserID:       userID,
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
		Notes:        req.Notes,
		Calories:     req.Calories,
		Protein:      req.Protein,
		Carbs:        req.Carbs,
		Fat:          req.Fat,
	}

	created, err := h.fridgeService.AddItem(c.Request.Context(), item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *FridgeHandler) UpdateItem(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	delete(updates, "user_id")

	item, err := h.fridgeService.UpdateItem(c.Request.Context(), userID, id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

type ConsumeRequest struct {
	Percent int `json:"percent" binding:"required,gt=0,lte=100"`
}

func (h *FridgeHandler) ConsumeItem(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.fridgeService.Consume(c.Request.Context(), userID, id, req.Percent)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to consume item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *FridgeHandler) UploadItemImage(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	data, contentType, ok := readImageUpload(c)
	if !ok {
		return
	}

	url, err := h.imageService.UploadItemImage(c.Request.Context(), userID, data, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
		return
	}

	item, err := h.fridgeService.UpdateItem(c.Request.Context(), userID, id, map[string]interface{}{"image_url": url})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *FridgeHandler) DeleteItem(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	err = h.fridgeService.DeleteItem(c.Request.Context(), userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item deleted", "id": id})
}
