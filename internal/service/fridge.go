package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
)

// FridgeService handles fridge inventory operations.
type FridgeService struct {
	db *gorm.DB
}

func NewFridgeService(db *gorm.DB) *FridgeService {
	return &FridgeService{db: db}
}

// ListItems returns all of a user's fridge items ordered by expiry date.
func (s *FridgeService) ListItems(ctx context.Context, userID uuid.UUID) ([]models.FridgeItem, error) {
	var items []models.FridgeItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

// ListByCategory returns a user's items in a category.
func (s *FridgeService) ListByCategory(ctx context.Context, userID uuid.UUID, category string) ([]models.FridgeItem, error) {
	var items []models.FridgeItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

// ListExpiring returns items expiring within the next `days` days,
// today included.
func (s *FridgeService) ListExpiring(ctx context.Context, userID uuid.UUID, days int) ([]models.FridgeItem, error) {
	if days <= 0 {
		days = 3
	}
	today := startOfDay(time.Now())
	cutoff := today.AddDate(0, 0, days)

	var items []models.FridgeItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expiry_date >= ? AND expiry_date <= ?", userID, today, cutoff).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

// ListExpired returns items whose expiry date is in the past.
func (s *FridgeService) ListExpired(ctx context.Context, userID uuid.UUID) ([]models.FridgeItem, error) {
	var items []models.FridgeItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expiry_date < ?", userID, startOfDay(time.Now())).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

// GetItem loads a single item, scoped to the owning user.
func (s *FridgeService) GetItem(ctx context.Context, userID, id uuid.UUID) (*models.FridgeItem, error) {
	var item models.FridgeItem
	if err := s.db.WithContext(ctx).First(&item, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem inserts a new fridge item, applying the same defaults the mobile
// clients expect (quantity 1, unit pcs, full amount, purchased today).
func (s *FridgeService) AddItem(ctx context.Context, item *models.FridgeItem) (*models.FridgeItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.AmountLeft <= 0 || item.AmountLeft > 100 {
		item.AmountLeft = 100
	}
	if item.PurchaseDate == nil {
		today := startOfDay(time.Now())
		item.PurchaseDate = &today
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies updates to an existing item and returns the fresh row.
func (s *FridgeService) UpdateItem(ctx context.Context, userID, id uuid.UUID, updates map[string]interface{}) (*models.FridgeItem, error) {
	result := s.db.WithContext(ctx).
		Model(&models.FridgeItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.GetItem(ctx, userID, id)
}

// Consume decrements the remaining amount of an item; at zero the item is
// deleted.
func (s *FridgeService) Consume(ctx context.Context, userID, id uuid.UUID, percent int) (*models.FridgeItem, error) {
	item, err := s.GetItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	item.AmountLeft -= percent
	if item.AmountLeft <= 0 {
		if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
			return nil, err
		}
		item.AmountLeft = 0
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Update("amount_left", item.AmountLeft).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *FridgeService) DeleteItem(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.FridgeItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
