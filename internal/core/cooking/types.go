package cooking

// Confidence tags how a match was derived.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceManual Confidence = "manual"
)

// IngredientMatch maps one free-text recipe ingredient to an inventory item.
// Ephemeral: built during prepare, consumed during log, never persisted.
type IngredientMatch struct {
	RecipeIngredient     string     `json:"recipeIngredient"`
	MatchedInventoryID   string     `json:"matchedInventoryId"`
	MatchedInventoryName string     `json:"matchedInventoryName"`
	CurrentQuantity      float64    `json:"currentQuantity"`
	Unit                 string     `json:"unit,omitempty"`
	SuggestedDeduction   float64    `json:"suggestedDeduction"`
	Confidence           Confidence `json:"confidence"`
}

// MatchResult is the matcher's output. Every input ingredient appears in
// exactly one of Matches or Unmatched.
type MatchResult struct {
	Matches   []IngredientMatch
	Unmatched []string
	UsedAI    bool
}

// Deduction is one finalized quantity reduction, the input to the ledger
// write. Entries with QuantityToDeduct <= 0 are skipped there.
type Deduction struct {
	InventoryItemID  string  `json:"inventoryItemId"`
	ItemName         string  `json:"itemName"`
	QuantityBefore   float64 `json:"quantityBefore"`
	QuantityToDeduct float64 `json:"quantityToDeduct"`
}

// DeductionRecord is the persisted ledger shape of one deduction, the sole
// source of truth for reversal. Price is not captured: a row recreated by
// undo after depletion gets price 0, an accepted information loss.
type DeductionRecord struct {
	InventoryItemID  string  `json:"inventory_item_id"`
	ItemName         string  `json:"item_name"`
	QuantityBefore   float64 `json:"quantity_before"`
	QuantityDeducted float64 `json:"quantity_deducted"`
	QuantityAfter    float64 `json:"quantity_after"`
}

// RecipeSnapshot denormalizes the cooked recipe onto the history entry; the
// recipe itself may not be independently persisted.
type RecipeSnapshot struct {
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source,omitempty"`
	Image  string `json:"image,omitempty"`
}
