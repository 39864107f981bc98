package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DietaryPreference represents a user's dietary preference entry.
// Preferences feed into recipe generation prompts as constraint lines.
type DietaryPreference struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PreferenceType string         `gorm:"size:50;not null" json:"preference_type"`
	CustomName     string         `gorm:"size:50" json:"custom_name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DietaryPreference) TableName() string {
	return "dietary_preferences"
}

// PromptName returns the name used when the preference is rendered into a
// generation prompt.
func (p DietaryPreference) PromptName() string {
	if p.PreferenceType == "custom" && p.CustomName != "" {
		return p.CustomName
	}
	return p.PreferenceType
}
