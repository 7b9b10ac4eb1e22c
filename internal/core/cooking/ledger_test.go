package cooking

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eat-backend/internal/infrastructure/database"
	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
	"eat-backend/internal/storage"
)

const testUser = "user-1"

func newTestService(t *testing.T) (*Service, *storage.InventoryRepository, *storage.HistoryRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	inventory := storage.NewInventoryRepository(db)
	history := storage.NewHistoryRepository(db)
	return NewService(inventory, history, 24*time.Hour), inventory, history
}

func seedItem(t *testing.T, repo *storage.InventoryRepository, id, name string, quantity float64) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.InventoryItem{
		ID:       id,
		UserID:   testUser,
		Name:     name,
		Quantity: quantity,
		Price:    3.50,
	}))
}

func TestLogCookingUpdatesQuantities(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Chicken Breast", 10)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Chicken Curry"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Chicken Breast", QuantityBefore: 10, QuantityToDeduct: 4},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.HistoryID)
	assert.Equal(t, 0, result.ItemsDeleted)
	assert.Empty(t, result.Warnings)

	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(6), item.Quantity)
}

func TestLogCookingDeletesDepletedItems(t *testing.T) {
	svc, inventory, history := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-milk", "Milk", 2)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Pancakes"}, []Deduction{
		{InventoryItemID: "inv-milk", ItemName: "Milk", QuantityBefore: 2, QuantityToDeduct: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsDeleted)
	for _, item := range result.Inventory {
		assert.NotEqual(t, "inv-milk", item.ID)
	}

	entry, err := history.GetForUser(ctx, result.HistoryID, testUser)
	require.NoError(t, err)
	assert.True(t, entry.CanUndo)
	assert.Nil(t, entry.UndoneAt)

	var records []DeductionRecord
	require.NoError(t, json.Unmarshal(entry.IngredientsDeducted, &records))
	require.Len(t, records, 1)
	assert.Equal(t, float64(2), records[0].QuantityBefore)
	assert.Equal(t, float64(2), records[0].QuantityDeducted)
	assert.Equal(t, float64(0), records[0].QuantityAfter)
}

func TestLogCookingOverdraftClampsToZero(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Rice", 3)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Fried Rice"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: 5},
	})
	require.NoError(t, err)

	// quantityAfter = max(0, 3-5): depleted, so deleted
	assert.Equal(t, 1, result.ItemsDeleted)
}

func TestLogCookingSkipsZeroDeductions(t *testing.T) {
	svc, inventory, history := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Rice", 3)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Fried Rice"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: 0},
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: -2},
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: 1},
	})
	require.NoError(t, err)

	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(2), item.Quantity)

	entry, err := history.GetForUser(ctx, result.HistoryID, testUser)
	require.NoError(t, err)
	var records []DeductionRecord
	require.NoError(t, json.Unmarshal(entry.IngredientsDeducted, &records))
	require.Len(t, records, 1)
	assert.Equal(t, float64(1), records[0].QuantityDeducted)
}

func TestLogCookingRejectsAllZeroDeductions(t *testing.T) {
	svc, inventory, history := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Rice", 3)

	_, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Fried Rice"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: 0},
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 3, QuantityToDeduct: -2},
	})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	// nothing written: inventory untouched, no history row to undo
	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(3), item.Quantity)

	_, total, err := history.ListActive(ctx, testUser, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestLogCookingUpdateFailureNamesItem(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Rice", 10)

	_, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Fried Rice"}, []Deduction{
		{InventoryItemID: "gone", ItemName: "Soy Sauce", QuantityBefore: 5, QuantityToDeduct: 1},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Soy Sauce")
}

func TestLogCookingScopedToOwner(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()

	// same item id owned by someone else
	require.NoError(t, inventory.Create(ctx, &models.InventoryItem{
		ID: "inv-1", UserID: "other-user", Name: "Rice", Quantity: 10,
	}))

	_, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Fried Rice"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Rice", QuantityBefore: 10, QuantityToDeduct: 2},
	})
	require.Error(t, err)

	item, err := inventory.GetForUser(ctx, "inv-1", "other-user")
	require.NoError(t, err)
	assert.Equal(t, float64(10), item.Quantity)
}
