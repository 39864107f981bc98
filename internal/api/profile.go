package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/service"
)

// Avatar uploads are capped at 5 MB.
const maxAvatarSize = 5 << 20

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/dietary-preferences", h.SetDietaryPreferences)
		profile.POST("/avatar", h.UploadAvatar)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

type DietaryPreferencesRequest struct {
	Preferences []string `json:"preferences"`
}

func (h *ProfileHandler) SetDietaryPreferences(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	var req DietaryPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profileService.SetDietaryPreferences(c.Request.Context(), userID, req.Preferences); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update dietary preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": req.Preferences})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return
	}

	data, contentType, ok := readImageUpload(c)
	if !ok {
		return
	}

	url, err := h.profileService.UploadAvatar(c.Request.Context(), userID, data, contentType)
	if err != nil {
		var configErr *service.ConfigurationError
		if errors.As(err, &configErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// readImageUpload pulls an image out of a multipart form (field "image") or
// a raw request body. Writes the error response itself when it fails.
func readImageUpload(c *gin.Context) ([]byte, string, bool) {
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxAvatarSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return nil, "", false
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return nil, "", false
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxAvatarSize+1))
		if err != nil || len(data) > maxAvatarSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return nil, "", false
		}
		return data, file.Header.Get("Content-Type"), true
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAvatarSize+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image payload required"})
		return nil, "", false
	}
	if len(data) > maxAvatarSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return nil, "", false
	}
	return data, c.ContentType(), true
}
