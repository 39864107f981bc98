package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fridgechef/backend/internal/models"
)

// SetupSQLiteDatabase opens an in-memory SQLite database for fast unit
// tests. SQLite tolerates the vector column type, so the recipes table
// migrates too; only embedding-ordered search needs the Postgres container.
func SetupSQLiteDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	// A single connection keeps the in-memory database alive and private
	// to this test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DietaryPreference{},
		&models.FridgeItem{},
		&models.Recipe{},
		&models.SavedRecipe{},
		&models.Meal{},
		&models.WaterEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate sqlite database: %v", err)
	}

	return db
}
