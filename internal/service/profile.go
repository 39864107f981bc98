package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
)

// Profile is the full profile view: account data, profile row and dietary
// preferences flattened together.
type Profile struct {
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	AvatarURL          string    `json:"avatar_url"`
	DailyCalorieGoal   int       `json:"daily_calorie_goal"`
	DailyWaterGoalML   int       `json:"daily_water_goal_ml"`
	DietaryPreferences []string  `json:"dietary_preferences"`
}

// ProfileService manages user profiles and dietary preferences.
type ProfileService struct {
	db     *gorm.DB
	images *ImageService
}

func NewProfileService(db *gorm.DB, images *ImageService) *ProfileService {
	return &ProfileService{db: db, images: images}
}

// GetProfile assembles the full profile for a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	prefs, err := s.DietaryPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(prefs))
	for _, p := range prefs {
		names = append(names, p.PromptName())
	}

	return &Profile{
		UserID:             user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Username:           profile.Username,
		AvatarURL:          profile.AvatarURL,
		DailyCalorieGoal:   profile.DailyCalorieGoal,
		DailyWaterGoalML:   profile.DailyWaterGoalML,
		DietaryPreferences: names,
	}, nil
}

// UpdateProfile applies profile updates (username, goals) and returns the
// fresh profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) (*Profile, error) {
	allowed := map[string]bool{
		"username":            true,
		"daily_calorie_goal":  true,
		"daily_water_goal_ml": true,
	}
	filtered := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}

	if len(filtered) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.UserProfile{}).
			Where("user_id = ?", userID).
			Updates(filtered)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return s.GetProfile(ctx, userID)
}

// SetDietaryPreferences replaces the user's preference set.
func (s *ProfileService) SetDietaryPreferences(ctx context.Context, userID uuid.UUID, prefs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.DietaryPreference{}).Error; err != nil {
			return err
		}
		for _, p := range prefs {
			name := strings.TrimSpace(p)
			if name == "" {
				continue
			}
			dp := models.DietaryPreference{
				ID:             uuid.New(),
				UserID:         userID,
				PreferenceType: name,
			}
			if err := tx.Create(&dp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DietaryPreferences returns the user's preferences.
func (s *ProfileService) DietaryPreferences(ctx context.Context, userID uuid.UUID) ([]models.DietaryPreference, error) {
	var prefs []models.DietaryPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&prefs).Error
	return prefs, err
}

// UploadAvatar stores the image in S3 and records its URL on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	if s.images == nil {
		return "", &ConfigurationError{Reason: "image storage is not configured"}
	}

	url, err := s.images.UploadAvatar(ctx, userID, data, contentType)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("avatar_url", url).Error
	if err != nil {
		return "", err
	}
	return url, nil
}
