package cooking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// ErrHistoryNotFound marks a history entry that does not exist or is not
// owned by the caller.
var ErrHistoryNotFound = errors.New("cooking history entry not found")

// RejectedError marks an undo refused on state grounds: window expired,
// already undone, or undo disabled.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// UndoResult is the outcome of one undo.
type UndoResult struct {
	Inventory []models.InventoryItem
	// Warnings collects per-item restore failures; they never abort the undo.
	Warnings []string
}

// UndoCooking reverses a cook action within the undo window.
//
// Still-existing rows are incremented by quantity_deducted (not reset to
// quantity_before, so manual edits since the cook survive). Rows deleted at
// depletion are recreated under their original id with quantity =
// quantity_deducted and price 0; the ledger does not capture price. Per-item
// failures are collected as warnings, and the entry is closed out regardless,
// so no entry can be undone twice.
func (s *Service) UndoCooking(ctx context.Context, userID, historyID string) (*UndoResult, error) {
	entry, err := s.history.GetForUser(ctx, historyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}

	now := time.Now().UTC()
	if entry.UndoneAt != nil {
		return nil, &RejectedError{Reason: "this cooking entry has already been undone"}
	}
	if !entry.CanUndo || now.Sub(entry.CookedAt) >= s.undoWindow {
		return nil, &RejectedError{Reason: "undo window expired or already disabled"}
	}

	var records []DeductionRecord
	if err := json.Unmarshal(entry.IngredientsDeducted, &records); err != nil {
		return nil, fmt.Errorf("failed to decode deduction records: %w", err)
	}

	result := &UndoResult{}

	for _, rec := range records {
		if err := s.restoreDeduction(ctx, userID, rec); err != nil {
			common.LogWarn("failed to restore inventory item during undo",
				zap.Error(err),
				zap.String("item_id", rec.InventoryItemID),
				zap.String("item_name", rec.ItemName),
			)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not restore %q: %v", rec.ItemName, err))
		}
	}

	// close out even when restores failed: the undo counts as attempted
	if err := s.history.MarkUndone(ctx, historyID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to close out history entry: %w", err)
	}

	inventory, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	result.Inventory = inventory

	common.LogInfo("cooking undone",
		zap.String("history_id", historyID),
		zap.Int("restored", len(records)-len(result.Warnings)),
		zap.Int("failed", len(result.Warnings)),
	)

	return result, nil
}

func (s *Service) restoreDeduction(ctx context.Context, userID string, rec DeductionRecord) error {
	item, err := s.inventory.GetForUser(ctx, rec.InventoryItemID, userID)
	if err == nil {
		return s.inventory.UpdateQuantity(ctx, item.ID, userID, item.Quantity+rec.QuantityDeducted)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// row was deleted at depletion time: recreate it under the original id
	return s.inventory.Create(ctx, &models.InventoryItem{
		ID:       rec.InventoryItemID,
		UserID:   userID,
		Name:     rec.ItemName,
		Quantity: rec.QuantityDeducted,
		Price:    0,
	})
}
