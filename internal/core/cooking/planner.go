package cooking

// PlanEntry is one item's pending deduction. Amount always sits in
// [0, CurrentQuantity]; out-of-range edits are clamped, never rejected.
type PlanEntry struct {
	InventoryItemID string
	ItemName        string
	CurrentQuantity float64
	Amount          float64
}

// WillDeplete reports whether committing this entry removes the item.
// Surfaced to the caller before commit; it never blocks one.
func (e PlanEntry) WillDeplete() bool {
	return e.CurrentQuantity > 0 && e.Amount >= e.CurrentQuantity
}

// Plan holds per-item deduction amounts between prepare and log. Amounts are
// initialized from the matcher's suggestions and adjusted by the caller.
type Plan struct {
	entries []PlanEntry
	index   map[string]int
}

// NewPlan builds a plan from the matcher's output, one entry per matched
// inventory item. Suggested deductions are clamped on the way in.
func NewPlan(matches []IngredientMatch) *Plan {
	p := &Plan{index: make(map[string]int)}
	for _, m := range matches {
		if m.MatchedInventoryID == "" {
			continue
		}
		if i, ok := p.index[m.MatchedInventoryID]; ok {
			// same item matched by several ingredients: amounts accumulate,
			// still capped at stock
			p.entries[i].Amount = clamp(p.entries[i].Amount+m.SuggestedDeduction, p.entries[i].CurrentQuantity)
			continue
		}
		p.index[m.MatchedInventoryID] = len(p.entries)
		p.entries = append(p.entries, PlanEntry{
			InventoryItemID: m.MatchedInventoryID,
			ItemName:        m.MatchedInventoryName,
			CurrentQuantity: m.CurrentQuantity,
			Amount:          clamp(m.SuggestedDeduction, m.CurrentQuantity),
		})
	}
	return p
}

// SetAmount overrides one item's deduction amount, clamped to
// [0, CurrentQuantity]. Unknown ids are ignored.
func (p *Plan) SetAmount(inventoryItemID string, amount float64) {
	i, ok := p.index[inventoryItemID]
	if !ok {
		return
	}
	p.entries[i].Amount = clamp(amount, p.entries[i].CurrentQuantity)
}

// Entries returns the plan's entries in insertion order.
func (p *Plan) Entries() []PlanEntry {
	return p.entries
}

// Deductions finalizes the plan, dropping zero-amount entries.
func (p *Plan) Deductions() []Deduction {
	var out []Deduction
	for _, e := range p.entries {
		if e.Amount <= 0 {
			continue
		}
		out = append(out, Deduction{
			InventoryItemID:  e.InventoryItemID,
			ItemName:         e.ItemName,
			QuantityBefore:   e.CurrentQuantity,
			QuantityToDeduct: e.Amount,
		})
	}
	return out
}

func clamp(amount, max float64) float64 {
	if amount < 0 {
		return 0
	}
	if amount > max {
		return max
	}
	return amount
}
