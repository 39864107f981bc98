package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/database"
	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
)

type demoUser struct {
	name     string
	email    string
	password string
	username string
	prefs    []string
}

var demoUsers = []demoUser{
	{"Demo User", "demo@fridgechef.app", "demo-password-123", "demo", nil},
	{"Vegan Demo", "vegan@fridgechef.app", "demo-password-123", "vegan_demo", []string{"vegan"}},
}

// Staple items placed in every demo fridge.
var demoItems = []struct {
	name     string
	category string
	quantity float64
	unit     string
	days     int
}{
	{"milk", "dairy", 1, "l", 5},
	{"eggs", "dairy", 12, "pcs", 14},
	{"flour", "pantry", 1, "kg", 180},
	{"chicken breast", "meat", 500, "g", 2},
	{"tomatoes", "produce", 4, "pcs", 6},
	{"onion", "produce", 3, "pcs", 20},
	{"cheddar cheese", "dairy", 200, "g", 21},
	{"spinach", "produce", 1, "pcs", 3},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	auth := service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	fridge := service.NewFridgeService(db)
	ctx := context.Background()

	for _, u := range demoUsers {
		if _, err := auth.Register(u.name, u.email, u.password, u.username, u.prefs); err != nil {
			if err == service.ErrUserExists {
				log.Printf("user %s already exists, skipping", u.email)
				continue
			}
			log.Fatalf("failed to create user %s: %v", u.email, err)
		}

		var user models.User
		if err := db.Where("email = ?", u.email).First(&user).Error; err != nil {
			log.Fatalf("failed to load created user %s: %v", u.email, err)
		}

		if err := stockFridge(ctx, fridge, user.ID); err != nil {
			log.Fatalf("failed to stock fridge for %s: %v", u.email, err)
		}
		log.Printf("created demo user %s with %d fridge items", u.email, len(demoItems))
	}
}

func stockFridge(ctx context.Context, fridge *service.FridgeService, userID uuid.UUID) error {
	for _, item := range demoItems {
		expiry := time.Now().AddDate(0, 0, item.days)
		_, err := fridge.AddItem(ctx, &models.FridgeItem{
			UserID:     userID,
			Name:       item.name,
			Category:   item.category,
			Quantity:   item.quantity,
			Unit:       item.unit,
			ExpiryDate: &expiry,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
