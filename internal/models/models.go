package models

import (
	"time"

	"gorm.io/datatypes"
)

// InventoryItem is a user-owned, quantity-tracked grocery entry. An item whose
// quantity reaches zero during a deduction is deleted, never kept as a zero
// row.
type InventoryItem struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      string    `json:"unit,omitempty"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// CookingHistoryEntry is the ledger record of one cook action. It is mutated
// exactly once, when the Undo Engine closes it out, and never deleted.
type CookingHistoryEntry struct {
	ID                  string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID              string         `gorm:"index;not null" json:"-"`
	RecipeTitle         string         `gorm:"not null" json:"recipe_title"`
	RecipeURL           string         `json:"recipe_url,omitempty"`
	RecipeSource        string         `json:"recipe_source,omitempty"`
	RecipeImage         string         `json:"recipe_image,omitempty"`
	CookedAt            time.Time      `gorm:"index" json:"cooked_at"`
	IngredientsDeducted datatypes.JSON `json:"ingredients_deducted"`
	CanUndo             bool           `json:"can_undo"`
	UndoneAt            *time.Time     `json:"undone_at"`
}
