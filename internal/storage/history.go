package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// HistoryRepository persists cooking history entries. Entries are never
// deleted; the only mutation is the terminal undo close-out.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates and returns a new HistoryRepository.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new history entry. A missing id is generated.
func (r *HistoryRepository) Create(ctx context.Context, entry *models.CookingHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = common.GenerateUUID()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetForUser fetches one entry by id, scoped to the user.
func (r *HistoryRepository) GetForUser(ctx context.Context, id, userID string) (*models.CookingHistoryEntry, error) {
	var entry models.CookingHistoryEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkUndone closes an entry out: undone_at set, can_undo cleared. The entry
// is terminal afterwards.
func (r *HistoryRepository) MarkUndone(ctx context.Context, id, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.CookingHistoryEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"undone_at": at,
			"can_undo":  false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActive returns a page of non-undone entries for the user, newest cook
// first, along with the total count of non-undone entries.
func (r *HistoryRepository) ListActive(ctx context.Context, userID string, offset, limit int) ([]models.CookingHistoryEntry, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.CookingHistoryEntry{}).
		Where("user_id = ? AND undone_at IS NULL", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.CookingHistoryEntry
	err := base.
		Order("cooked_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
