package cooking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
	"eat-backend/internal/storage"
)

// Service applies cooking deductions to the inventory and keeps the history
// ledger. Each row write is an independent, user-scoped operation; the data
// store's per-row atomicity is the only serialization (two concurrent cooks
// against one item are last-write-wins).
type Service struct {
	inventory  *storage.InventoryRepository
	history    *storage.HistoryRepository
	undoWindow time.Duration
}

// NewService creates the cooking service.
func NewService(inventory *storage.InventoryRepository, history *storage.HistoryRepository, undoWindow time.Duration) *Service {
	return &Service{
		inventory:  inventory,
		history:    history,
		undoWindow: undoWindow,
	}
}

// CookResult is the outcome of one logged cook.
type CookResult struct {
	HistoryID    string
	Inventory    []models.InventoryItem
	ItemsDeleted int
	// Warnings collects best-effort failures (the batched depletion delete)
	// that did not abort the operation.
	Warnings []string
}

// LogCooking applies the finalized deductions and writes one history entry.
//
// Per deduction: quantityAfter = max(0, before-deduct); depleted items are
// collected for one batched delete, the rest are updated in place. An update
// failure aborts with an item-specific error; rows already written stay
// written (the history entry is the compensating record for that window). The
// batched delete is best-effort cleanup: its failure becomes a warning, and
// the history entry is still required. Failing to write the history entry
// itself is fatal. A list where no deduction is positive is rejected with a
// ValidationError before anything is written.
func (s *Service) LogCooking(ctx context.Context, userID string, recipe RecipeSnapshot, deductions []Deduction) (*CookResult, error) {
	var (
		records   []DeductionRecord
		deleteIDs []string
	)

	for _, d := range deductions {
		if d.QuantityToDeduct <= 0 {
			continue
		}

		after := d.QuantityBefore - d.QuantityToDeduct
		if after < 0 {
			after = 0
		}

		if after == 0 {
			deleteIDs = append(deleteIDs, d.InventoryItemID)
		} else {
			if err := s.inventory.UpdateQuantity(ctx, d.InventoryItemID, userID, after); err != nil {
				return nil, fmt.Errorf("failed to update inventory item %q: %w", d.ItemName, err)
			}
		}

		records = append(records, DeductionRecord{
			InventoryItemID:  d.InventoryItemID,
			ItemName:         d.ItemName,
			QuantityBefore:   d.QuantityBefore,
			QuantityDeducted: d.QuantityToDeduct,
			QuantityAfter:    after,
		})
	}

	// every entry skipped means nothing was cooked; recording it would
	// create an undoable history row that restores nothing
	if len(records) == 0 {
		return nil, common.NewValidationError("no deduction has a positive quantity")
	}

	result := &CookResult{}

	if len(deleteIDs) > 0 {
		if err := s.inventory.DeleteBatch(ctx, deleteIDs, userID); err != nil {
			common.LogWarn("failed to delete depleted inventory items",
				zap.Error(err),
				zap.Strings("item_ids", deleteIDs),
			)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to delete %d depleted item(s): %v", len(deleteIDs), err))
		} else {
			result.ItemsDeleted = len(deleteIDs)
		}
	}

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deduction records: %w", err)
	}

	entry := &models.CookingHistoryEntry{
		UserID:              userID,
		RecipeTitle:         recipe.Title,
		RecipeURL:           recipe.URL,
		RecipeSource:        recipe.Source,
		RecipeImage:         recipe.Image,
		CookedAt:            time.Now().UTC(),
		IngredientsDeducted: datatypes.JSON(recordsJSON),
		CanUndo:             true,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		// deductions applied with no ledger record: unrecoverable without
		// manual intervention, so this must surface loudly
		common.LogError("failed to write cooking history entry",
			zap.Error(err),
			zap.String("recipe", recipe.Title),
			zap.Int("deduction_count", len(records)),
		)
		return nil, fmt.Errorf("failed to record cooking history: %w", err)
	}
	result.HistoryID = entry.ID

	inventory, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	result.Inventory = inventory

	common.LogInfo("cooking logged",
		zap.String("history_id", entry.ID),
		zap.String("recipe", recipe.Title),
		zap.Int("deductions", len(records)),
		zap.Int("items_deleted", result.ItemsDeleted),
	)

	return result, nil
}

// History returns a page of the user's non-undone entries, newest cook first.
func (s *Service) History(ctx context.Context, userID string, page, limit int) ([]models.CookingHistoryEntry, int64, error) {
	return s.history.ListActive(ctx, userID, (page-1)*limit, limit)
}

// CanUndo derives whether an entry is still reversible right now. Expiry is
// recomputed on every read, never stored.
func (s *Service) CanUndo(entry *models.CookingHistoryEntry, now time.Time) bool {
	return entry.CanUndo && entry.UndoneAt == nil && now.Sub(entry.CookedAt) < s.undoWindow
}
