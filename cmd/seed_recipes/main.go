package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/database"
	"github.com/fridgechef/backend/internal/logging"
	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
)

// Cuisines to seed the public catalog with. One recipe is generated per
// entry, so the list size bounds API spend.
var seedCuisines = []string{
	"Italian",
	"Mexican",
	"Japanese",
	"Indian",
	"Thai",
	"French",
	"Greek",
	"Korean",
	"Spanish",
	"Moroccan",
}

var seedIngredients = []string{
	"chicken", "rice", "onion", "garlic", "tomato",
	"eggs", "potato", "carrot", "bell pepper", "olive oil",
}

func main() {
	limit := flag.Int("limit", len(seedCuisines), "Maximum number of recipes to generate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	gemini, err := service.NewGeminiService(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create generation service: %v", err)
	}

	recipes := service.NewRecipeService(db)
	seedUser, err := ensureSeedUser(db)
	if err != nil {
		log.Fatalf("failed to create seed user: %v", err)
	}

	ctx := context.Background()
	created := 0
	for i, cuisine := range seedCuisines {
		if i >= *limit {
			break
		}

		generated, err := gemini.GenerateSingleRecipe(ctx, seedIngredients, cuisine)
		if err != nil {
			log.Printf("failed to generate %s recipe: %v", cuisine, err)
			continue
		}
		if generated == nil {
			log.Printf("no recipe generated for cuisine %s", cuisine)
			continue
		}

		recipe := seedRecipeModel(generated, cuisine)
		if _, err := recipes.CreateRecipe(ctx, seedUser.ID, recipe); err != nil {
			log.Printf("failed to store %s recipe: %v", cuisine, err)
			continue
		}

		created++
		log.Printf("seeded recipe %q (%s)", recipe.Name, cuisine)

		// Stay well under the generation API rate limit.
		time.Sleep(2 * time.Second)
	}

	log.Printf("done: %d recipes seeded", created)
}

func seedRecipeModel(generated *service.GeneratedRecipe, cuisine string) *models.Recipe {
	ingredients := make([]string, 0, len(generated.Ingredients))
	for _, ing := range generated.Ingredients {
		ingredients = append(ingredients, ing.String())
	}

	return &models.Recipe{
		Name:          generated.Name,
		Description:   generated.Description,
		ImageURL:      generated.Image,
		PrepTime:      generated.PrepTime,
		CookTime:      generated.CookTime,
		Servings:      generated.Servings,
		Difficulty:    generated.Difficulty,
		Cuisine:       cuisine,
		Tags:          models.JSONBStringArray(generated.Tags),
		Ingredients:   models.JSONBStringArray(ingredients),
		Instructions:  models.JSONBStringArray(generated.Instructions),
		Calories:      generated.Calories,
		Protein:       generated.Protein,
		Carbs:         generated.Carbs,
		Fat:           generated.Fat,
		IsPublic:      true,
		IsAIGenerated: true,
	}
}

// ensureSeedUser finds or creates the system account that owns seeded
// recipes.
func ensureSeedUser(db *gorm.DB) (*models.User, error) {
	const seedEmail = "seed@fridgechef.app"

	var user models.User
	err := db.Where("email = ?", seedEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		ID:           uuid.New(),
		Name:         "FridgeChef",
		Email:        seedEmail,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	profile := models.UserProfile{
		ID:       uuid.New(),
		UserID:   user.ID,
		Username: "fridgechef",
	}
	if err := db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
