package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FridgeItem is one entry in a user's food inventory.
type FridgeItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Category     string         `gorm:"size:50" json:"category"`
	Quantity     float64        `gorm:"default:1" json:"quantity"`
	Unit         string         `gorm:"size:20;default:'pcs'" json:"unit"`
	AmountLeft   int            `gorm:"default:100" json:"amount_left"`
	PurchaseDate *time.Time     `gorm:"type:date" json:"purchase_date"`
	ExpiryDate   *time.Time     `gorm:"type:date;index" json:"expiry_date"`
	ImageURL     string         `gorm:"size:255" json:"image_url"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Calories     int            `gorm:"default:0" json:"calories"`
	Protein      int            `gorm:"default:0" json:"protein"`
	Carbs        int            `gorm:"default:0" json:"carbs"`
	Fat          int            `gorm:"default:0" json:"fat"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FridgeItem) TableName() string {
	return "fridge_items"
}
