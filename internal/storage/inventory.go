package storage

import (
	"context"

	"gorm.io/gorm"

	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// InventoryRepository persists inventory items. Every query is scoped by the
// owning user id.
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates and returns a new InventoryRepository.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ListByUser returns all items owned by the user, newest first.
func (r *InventoryRepository) ListByUser(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetForUser fetches one item by id, scoped to the user.
func (r *InventoryRepository) GetForUser(ctx context.Context, id, userID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item. A missing id is generated.
func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == "" {
		item.ID = common.GenerateUUID()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateQuantity sets the quantity of one item, scoped to the user. Returns
// gorm.ErrRecordNotFound when no owned row matches.
func (r *InventoryRepository) UpdateQuantity(ctx context.Context, id, userID string, quantity float64) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBatch removes the given items in one statement, scoped to the user.
func (r *InventoryRepository) DeleteBatch(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&models.InventoryItem{}).Error
}

// Delete removes one item, scoped to the user.
func (r *InventoryRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.InventoryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
