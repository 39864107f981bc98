package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is a persisted recipe, either user-created or saved from an AI
// generation. Ingredients are free-text "amount unit name" entries.
type Recipe struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	ImageURL      string           `gorm:"size:255" json:"image_url"`
	PrepTime      int              `gorm:"default:15" json:"prep_time"`
	CookTime      int              `gorm:"default:30" json:"cook_time"`
	Servings      int              `gorm:"default:4" json:"servings"`
	Difficulty    string           `gorm:"size:20;default:'medium'" json:"difficulty"`
	Cuisine       string           `gorm:"size:50" json:"cuisine"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Ingredients   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Calories      int              `gorm:"default:0" json:"calories"`
	Protein       int              `gorm:"default:0" json:"protein"`
	Carbs         int              `gorm:"default:0" json:"carbs"`
	Fat           int              `gorm:"default:0" json:"fat"`
	IsPublic      bool             `gorm:"default:true" json:"is_public"`
	IsAIGenerated bool             `gorm:"default:false" json:"is_ai_generated"`
	Embedding     pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
	CreatedBy     uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
}

// SavedRecipe links a user to a recipe they bookmarked.
type SavedRecipe struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_recipe" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_recipe" json:"recipe_id"`
	SavedAt  time.Time `gorm:"autoCreateTime" json:"saved_at"`
}

func (SavedRecipe) TableName() string {
	return "saved_recipes"
}
