package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const generationTTL = 24 * time.Hour

var ErrGenerationNotFound = errors.New("generation not found")

// StoredGeneration is one cached generation batch, re-fetchable by ID so
// clients can revisit results without paying for another API call.
type StoredGeneration struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	Options   GenerationOptions `json:"options"`
	Recipes   []GeneratedRecipe `json:"recipes"`
}

// GenerationCache stores generation batches in Redis with a 24h TTL.
type GenerationCache struct {
	redis *redis.Client
}

func NewGenerationCache(redisClient *redis.Client) *GenerationCache {
	return &GenerationCache{redis: redisClient}
}

// Save stores a generation batch and returns its cache ID.
func (c *GenerationCache) Save(ctx context.Context, userID uuid.UUID, opts GenerationOptions, recipes []GeneratedRecipe) (*StoredGeneration, error) {
	gen := &StoredGeneration{
		ID:        uuid.New().String(),
		UserID:    userID.String(),
		CreatedAt: time.Now(),
		Options:   opts,
		Recipes:   recipes,
	}

	data, err := json.Marshal(gen)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation: %w", err)
	}

	key := generationKey(userID, gen.ID)
	if err := c.redis.Set(ctx, key, data, generationTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to save generation to Redis: %w", err)
	}
	return gen, nil
}

// Get retrieves a cached generation batch for the given user.
func (c *GenerationCache) Get(ctx context.Context, userID uuid.UUID, id string) (*StoredGeneration, error) {
	data, err := c.redis.Get(ctx, generationKey(userID, id)).Bytes()
	if err == redis.Nil {
		return nil, ErrGenerationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation from Redis: %w", err)
	}

	var gen StoredGeneration
	if err := json.Unmarshal(data, &gen); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation: %w", err)
	}
	return &gen, nil
}

// Delete removes a cached generation batch.
func (c *GenerationCache) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	return c.redis.Del(ctx, generationKey(userID, id)).Err()
}

func generationKey(userID uuid.UUID, id string) string {
	return fmt.Sprintf("recipe:generation:%s:%s", userID, id)
}
