package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/models"
)

// New opens the Postgres connection through gorm.
func New(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for all application models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DietaryPreference{},
		&models.FridgeItem{},
		&models.Recipe{},
		&models.SavedRecipe{},
		&models.Meal{},
		&models.WaterEntry{},
	)
}
