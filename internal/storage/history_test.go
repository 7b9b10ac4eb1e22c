package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eat-backend/internal/infrastructure/database"
	"eat-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newEntry(userID, title string, cookedAt time.Time) *models.CookingHistoryEntry {
	return &models.CookingHistoryEntry{
		UserID:              userID,
		RecipeTitle:         title,
		CookedAt:            cookedAt,
		IngredientsDeducted: datatypes.JSON([]byte("[]")),
		CanUndo:             true,
	}
}

func TestHistoryListActiveOrderAndPaging(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		entry := newEntry("user-1", fmt.Sprintf("Recipe %d", i), now.Add(-time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, entry))
	}
	// other user's entry never shows up
	require.NoError(t, repo.Create(ctx, newEntry("user-2", "Other", now)))

	entries, total, err := repo.ListActive(ctx, "user-1", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, entries, 3)

	// newest cook first
	assert.Equal(t, "Recipe 0", entries[0].RecipeTitle)
	assert.Equal(t, "Recipe 1", entries[1].RecipeTitle)
	assert.Equal(t, "Recipe 2", entries[2].RecipeTitle)

	entries, total, err = repo.ListActive(ctx, "user-1", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, entries, 2)
}

func TestHistoryListActiveExcludesUndone(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	active := newEntry("user-1", "Active", now)
	require.NoError(t, repo.Create(ctx, active))

	undone := newEntry("user-1", "Undone", now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, undone))
	require.NoError(t, repo.MarkUndone(ctx, undone.ID, "user-1", now))

	entries, total, err := repo.ListActive(ctx, "user-1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "Active", entries[0].RecipeTitle)
}

func TestHistoryMarkUndone(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()

	entry := newEntry("user-1", "Stew", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, entry))

	at := time.Now().UTC()
	require.NoError(t, repo.MarkUndone(ctx, entry.ID, "user-1", at))

	got, err := repo.GetForUser(ctx, entry.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, got.CanUndo)
	require.NotNil(t, got.UndoneAt)

	// wrong owner cannot touch the entry
	err = repo.MarkUndone(ctx, entry.ID, "user-2", at)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInventoryOwnerScoping(t *testing.T) {
	repo := NewInventoryRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.InventoryItem{
		ID: "inv-1", UserID: "user-1", Name: "Milk", Quantity: 2,
	}))

	_, err := repo.GetForUser(ctx, "inv-1", "user-2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.UpdateQuantity(ctx, "inv-1", "user-2", 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteBatch(ctx, []string{"inv-1"}, "user-2"))
	item, err := repo.GetForUser(ctx, "inv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, float64(2), item.Quantity)
}
