package cooking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"eat-backend/internal/models"
	"eat-backend/internal/storage"
)

func seedHistory(t *testing.T, history *storage.HistoryRepository, cookedAt time.Time, canUndo bool, undoneAt *time.Time, records []DeductionRecord) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)

	entry := &models.CookingHistoryEntry{
		UserID:              testUser,
		RecipeTitle:         "Chicken Curry",
		CookedAt:            cookedAt,
		IngredientsDeducted: datatypes.JSON(data),
		CanUndo:             canUndo,
		UndoneAt:            undoneAt,
	}
	require.NoError(t, history.Create(context.Background(), entry))
	return entry.ID
}

func TestUndoRestoresExistingRow(t *testing.T) {
	svc, inventory, history := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Chicken Breast", 10)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Chicken Curry"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Chicken Breast", QuantityBefore: 10, QuantityToDeduct: 4},
	})
	require.NoError(t, err)

	undo, err := svc.UndoCooking(ctx, testUser, result.HistoryID)
	require.NoError(t, err)
	assert.Empty(t, undo.Warnings)

	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(10), item.Quantity)

	entry, err := history.GetForUser(ctx, result.HistoryID, testUser)
	require.NoError(t, err)
	assert.False(t, entry.CanUndo)
	require.NotNil(t, entry.UndoneAt)
}

func TestUndoRestoreToleratesConcurrentEdits(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Chicken Breast", 10)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Chicken Curry"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Chicken Breast", QuantityBefore: 10, QuantityToDeduct: 4},
	})
	require.NoError(t, err)

	// manual edit between cook and undo
	require.NoError(t, inventory.UpdateQuantity(ctx, "inv-1", testUser, 8))

	_, err = svc.UndoCooking(ctx, testUser, result.HistoryID)
	require.NoError(t, err)

	// incremented by quantity_deducted, not reset to quantity_before
	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(12), item.Quantity)
}

func TestUndoRecreatesDeletedRow(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Milk", 10)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Custard"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Milk", QuantityBefore: 10, QuantityToDeduct: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.ItemsDeleted)

	undo, err := svc.UndoCooking(ctx, testUser, result.HistoryID)
	require.NoError(t, err)
	assert.Empty(t, undo.Warnings)

	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, "Milk", item.Name)
	assert.Equal(t, float64(10), item.Quantity)
	// price is not captured in the ledger
	assert.Equal(t, float64(0), item.Price)
}

func TestUndoWindow(t *testing.T) {
	now := time.Now().UTC()
	undone := now.Add(-time.Hour)

	tests := []struct {
		name     string
		cookedAt time.Time
		canUndo  bool
		undoneAt *time.Time
		wantErr  string
	}{
		{
			name:     "just inside window",
			cookedAt: now.Add(-(23*time.Hour + 59*time.Minute)),
			canUndo:  true,
		},
		{
			name:     "just outside window",
			cookedAt: now.Add(-(24*time.Hour + time.Minute)),
			canUndo:  true,
			wantErr:  "undo window expired or already disabled",
		},
		{
			name:     "undo disabled",
			cookedAt: now.Add(-time.Hour),
			canUndo:  false,
			wantErr:  "undo window expired or already disabled",
		},
		{
			name:     "already undone",
			cookedAt: now.Add(-2 * time.Hour),
			canUndo:  false,
			undoneAt: &undone,
			wantErr:  "already been undone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, inventory, history := newTestService(t)
			ctx := context.Background()
			seedItem(t, inventory, "inv-1", "Milk", 5)

			id := seedHistory(t, history, tt.cookedAt, tt.canUndo, tt.undoneAt, []DeductionRecord{
				{InventoryItemID: "inv-1", ItemName: "Milk", QuantityBefore: 7, QuantityDeducted: 2, QuantityAfter: 5},
			})

			_, err := svc.UndoCooking(ctx, testUser, id)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			var rejected *RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Contains(t, rejected.Reason, tt.wantErr)

			// state untouched on rejection
			item, err := inventory.GetForUser(ctx, "inv-1", testUser)
			require.NoError(t, err)
			assert.Equal(t, float64(5), item.Quantity)
		})
	}
}

func TestUndoNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UndoCooking(context.Background(), testUser, "missing")
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestUndoNotOwned(t *testing.T) {
	svc, _, history := newTestService(t)
	ctx := context.Background()

	entry := &models.CookingHistoryEntry{
		UserID:              "other-user",
		RecipeTitle:         "Stew",
		CookedAt:            time.Now().UTC(),
		IngredientsDeducted: datatypes.JSON([]byte("[]")),
		CanUndo:             true,
	}
	require.NoError(t, history.Create(ctx, entry))

	_, err := svc.UndoCooking(ctx, testUser, entry.ID)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestUndoIsTerminal(t *testing.T) {
	svc, inventory, _ := newTestService(t)
	ctx := context.Background()
	seedItem(t, inventory, "inv-1", "Milk", 10)

	result, err := svc.LogCooking(ctx, testUser, RecipeSnapshot{Title: "Custard"}, []Deduction{
		{InventoryItemID: "inv-1", ItemName: "Milk", QuantityBefore: 10, QuantityToDeduct: 4},
	})
	require.NoError(t, err)

	_, err = svc.UndoCooking(ctx, testUser, result.HistoryID)
	require.NoError(t, err)

	_, err = svc.UndoCooking(ctx, testUser, result.HistoryID)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)

	// quantity not restored twice
	item, err := inventory.GetForUser(ctx, "inv-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, float64(10), item.Quantity)
}

func TestUndoClosesOutDespiteRestoreFailure(t *testing.T) {
	svc, inventory, history := newTestService(t)
	ctx := context.Background()

	// recreate path collides with a row the other user now owns under the
	// same primary key, forcing a per-item restore failure
	require.NoError(t, inventory.Create(ctx, &models.InventoryItem{
		ID: "inv-1", UserID: "other-user", Name: "Milk", Quantity: 1,
	}))

	id := seedHistory(t, history, time.Now().UTC(), true, nil, []DeductionRecord{
		{InventoryItemID: "inv-1", ItemName: "Milk", QuantityBefore: 2, QuantityDeducted: 2, QuantityAfter: 0},
	})

	result, err := svc.UndoCooking(ctx, testUser, id)
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 1)

	entry, err := history.GetForUser(ctx, id, testUser)
	require.NoError(t, err)
	assert.False(t, entry.CanUndo)
	assert.NotNil(t, entry.UndoneAt)
}
