package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/testhelpers"
)

func addItem(t *testing.T, svc *service.FridgeService, userID uuid.UUID, name string, expiryDays int) *models.FridgeItem {
	t.Helper()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	expiry := today.AddDate(0, 0, expiryDays)
	item, err := svc.AddItem(context.Background(), &models.FridgeItem{
		UserID:     userID,
		Name:       name,
		ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	return item
}

func TestFridgeService(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	svc := service.NewFridgeService(db)
	ctx := context.Background()
	userID := uuid.New()
	otherUser := uuid.New()

	t.Run("add applies defaults", func(t *testing.T) {
		item, err := svc.AddItem(ctx, &models.FridgeItem{UserID: userID, Name: "milk"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, float64(1), item.Quantity)
		assert.Equal(t, "pcs", item.Unit)
		assert.Equal(t, 100, item.AmountLeft)
		require.NotNil(t, item.PurchaseDate)
	})

	t.Run("expiring window includes today and the cutoff", func(t *testing.T) {
		addItem(t, svc, userID, "yogurt", 0)
		addItem(t, svc, userID, "cheese", 3)
		addItem(t, svc, userID, "frozen peas", 90)
		addItem(t, svc, userID, "old leftovers", -2)

		items, err := svc.ListExpiring(ctx, userID, 3)
		require.NoError(t, err)

		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.Name)
		}
		assert.Contains(t, names, "yogurt")
		assert.Contains(t, names, "cheese")
		assert.NotContains(t, names, "frozen peas")
		assert.NotContains(t, names, "old leftovers")
	})

	t.Run("expired lists only past-dated items", func(t *testing.T) {
		items, err := svc.ListExpired(ctx, userID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "old leftovers", items[0].Name)
	})

	t.Run("items are scoped to their owner", func(t *testing.T) {
		item := addItem(t, svc, otherUser, "secret sauce", 5)

		_, err := svc.GetItem(ctx, userID, item.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		err = svc.DeleteItem(ctx, userID, item.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("consume decrements and deletes at zero", func(t *testing.T) {
		item := addItem(t, svc, userID, "juice", 7)

		updated, err := svc.Consume(ctx, userID, item.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, 60, updated.AmountLeft)

		updated, err = svc.Consume(ctx, userID, item.ID, 60)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.AmountLeft)

		_, err = svc.GetItem(ctx, userID, item.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("update changes fields and bumps nothing else", func(t *testing.T) {
		item := addItem(t, svc, userID, "butter", 30)

		updated, err := svc.UpdateItem(ctx, userID, item.ID, map[string]interface{}{
			"name":     "salted butter",
			"category": "dairy",
		})
		require.NoError(t, err)
		assert.Equal(t, "salted butter", updated.Name)
		assert.Equal(t, "dairy", updated.Category)
		assert.Equal(t, item.AmountLeft, updated.AmountLeft)
	})

	t.Run("update of a missing item reports not found", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, userID, uuid.New(), map[string]interface{}{"name": "x"})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
