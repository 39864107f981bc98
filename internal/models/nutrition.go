package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is one logged meal entry for a given day.
type Meal struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date      time.Time      `gorm:"type:date;not null;index" json:"date"`
	MealType  string         `gorm:"size:20;not null" json:"meal_type"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	RecipeID  *uuid.UUID     `gorm:"type:uuid" json:"recipe_id"`
	Calories  int            `gorm:"default:0" json:"calories"`
	Protein   int            `gorm:"default:0" json:"protein"`
	Carbs     int            `gorm:"default:0" json:"carbs"`
	Fat       int            `gorm:"default:0" json:"fat"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WaterEntry is a single water intake record in milliliters.
type WaterEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	AmountML  int       `gorm:"not null" json:"amount_ml"`
	CreatedAt time.Time `json:"created_at"`
}

func (WaterEntry) TableName() string {
	return "water_intake"
}
