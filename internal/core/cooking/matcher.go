package cooking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ParseError marks an AI payload that could not be used as a match result:
// malformed JSON, missing fields, or references to unknown inventory ids.
// It triggers the deterministic fallback, never a caller-visible failure.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable AI match payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unusable AI match payload: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Matcher maps free-text recipe ingredients to inventory items. AI-assisted
// matching is the primary strategy; a case-insensitive substring scan is the
// fallback when the AI path fails for any reason.
type Matcher struct {
	ai Completer
}

// NewMatcher creates a new Matcher. A nil completer disables the AI path.
func NewMatcher(ai Completer) *Matcher {
	return &Matcher{ai: ai}
}

// Match resolves every recipe ingredient into exactly one of: a match with a
// resolved inventory id, or the unmatched list. The AI call is a single
// synchronous request with no retry; any failure falls through to the
// fallback immediately, signalled only by UsedAI=false.
func (m *Matcher) Match(ctx context.Context, recipeTitle string, recipeIngredients []string, inventory []models.InventoryItem) *MatchResult {
	if m.ai != nil {
		result, err := m.matchWithAI(ctx, recipeTitle, recipeIngredients, inventory)
		if err == nil {
			return result
		}
		common.LogWarn("AI matching failed, using fallback",
			zap.Error(err),
			zap.String("recipe", recipeTitle),
			zap.Int("ingredient_count", len(recipeIngredients)),
		)
	}

	result := fallbackMatch(recipeIngredients, inventory)
	return result
}

// aiMatchPayload is the loose shape expected back from the model.
type aiMatchPayload struct {
	Matches []struct {
		RecipeIngredient   string  `json:"recipeIngredient"`
		MatchedInventoryID string  `json:"matchedInventoryId"`
		SuggestedDeduction float64 `json:"suggestedDeduction"`
		Confidence         string  `json:"confidence"`
	} `json:"matches"`
	Unmatched []string `json:"unmatched"`
}

func (m *Matcher) matchWithAI(ctx context.Context, recipeTitle string, recipeIngredients []string, inventory []models.InventoryItem) (*MatchResult, error) {
	prompt := buildMatchPrompt(recipeTitle, recipeIngredients, inventory)

	content, err := m.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	object, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, &ParseError{Reason: "no JSON object", Err: err}
	}

	var payload aiMatchPayload
	if err := common.ParseJSON(object, &payload); err != nil {
		return nil, &ParseError{Reason: "malformed JSON", Err: err}
	}
	if payload.Matches == nil && payload.Unmatched == nil {
		return nil, &ParseError{Reason: "missing matches and unmatched fields"}
	}

	byID := make(map[string]models.InventoryItem, len(inventory))
	for _, item := range inventory {
		byID[item.ID] = item
	}
	inputs := make(map[string]bool, len(recipeIngredients))
	for _, ing := range recipeIngredients {
		inputs[ing] = true
	}

	result := &MatchResult{UsedAI: true, Unmatched: []string{}}
	seen := make(map[string]bool, len(recipeIngredients))

	for _, raw := range payload.Matches {
		if raw.RecipeIngredient == "" {
			return nil, &ParseError{Reason: "match without recipeIngredient"}
		}
		// an invented ingredient string would deduct a real item under a
		// label the caller never asked about
		if !inputs[raw.RecipeIngredient] {
			return nil, &ParseError{Reason: fmt.Sprintf("match references unknown ingredient %q", raw.RecipeIngredient)}
		}
		item, ok := byID[raw.MatchedInventoryID]
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("match references unknown inventory id %q", raw.MatchedInventoryID)}
		}
		if seen[raw.RecipeIngredient] {
			continue
		}
		seen[raw.RecipeIngredient] = true

		deduction := raw.SuggestedDeduction
		if deduction <= 0 {
			deduction = 1
		}
		confidence := Confidence(raw.Confidence)
		switch confidence {
		case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		default:
			confidence = ConfidenceMedium
		}

		result.Matches = append(result.Matches, IngredientMatch{
			RecipeIngredient:     raw.RecipeIngredient,
			MatchedInventoryID:   item.ID,
			MatchedInventoryName: item.Name,
			CurrentQuantity:      item.Quantity,
			Unit:                 item.Unit,
			SuggestedDeduction:   deduction,
			Confidence:           confidence,
		})
	}

	for _, ing := range payload.Unmatched {
		// drop invented strings; the sweep below covers the real inputs
		if !inputs[ing] || seen[ing] {
			continue
		}
		seen[ing] = true
		result.Unmatched = append(result.Unmatched, ing)
	}

	// every input ingredient lands in exactly one list; anything the model
	// dropped counts as unmatched
	for _, ing := range recipeIngredients {
		if !seen[ing] {
			seen[ing] = true
			result.Unmatched = append(result.Unmatched, ing)
		}
	}

	return result, nil
}

// fallbackMatch is the deterministic strategy: for each ingredient, the first
// inventory item whose lowercased name contains, or is contained in, the
// lowercased ingredient wins. No ranking among candidates; the fallback
// cannot infer quantities, so every suggestion is 1 at low confidence.
// Stateless pure function over its inputs.
func fallbackMatch(recipeIngredients []string, inventory []models.InventoryItem) *MatchResult {
	result := &MatchResult{UsedAI: false, Unmatched: []string{}}

	for _, ing := range recipeIngredients {
		lowered := strings.ToLower(ing)
		matched := false
		for _, item := range inventory {
			name := strings.ToLower(item.Name)
			if name == "" {
				continue
			}
			if strings.Contains(lowered, name) || strings.Contains(name, lowered) {
				result.Matches = append(result.Matches, IngredientMatch{
					RecipeIngredient:     ing,
					MatchedInventoryID:   item.ID,
					MatchedInventoryName: item.Name,
					CurrentQuantity:      item.Quantity,
					Unit:                 item.Unit,
					SuggestedDeduction:   1,
					Confidence:           ConfidenceLow,
				})
				matched = true
				break
			}
		}
		if !matched {
			result.Unmatched = append(result.Unmatched, ing)
		}
	}

	return result
}

// ApplyManualOverride promotes an ingredient to a match against the given
// item. Re-mapping the same ingredient replaces its match rather than
// duplicating it, and the ingredient leaves the unmatched list.
func ApplyManualOverride(result *MatchResult, ingredient string, item models.InventoryItem) {
	match := IngredientMatch{
		RecipeIngredient:     ingredient,
		MatchedInventoryID:   item.ID,
		MatchedInventoryName: item.Name,
		CurrentQuantity:      item.Quantity,
		Unit:                 item.Unit,
		SuggestedDeduction:   1,
		Confidence:           ConfidenceManual,
	}

	replaced := false
	for i := range result.Matches {
		if result.Matches[i].RecipeIngredient == ingredient {
			result.Matches[i] = match
			replaced = true
			break
		}
	}
	if !replaced {
		result.Matches = append(result.Matches, match)
	}

	unmatched := result.Unmatched[:0]
	for _, ing := range result.Unmatched {
		if ing != ingredient {
			unmatched = append(unmatched, ing)
		}
	}
	result.Unmatched = unmatched
}

func buildMatchPrompt(recipeTitle string, recipeIngredients []string, inventory []models.InventoryItem) string {
	var sb strings.Builder
	sb.WriteString("You are matching recipe ingredients against a user's grocery inventory.\n\n")
	fmt.Fprintf(&sb, "Recipe: %s\n\nIngredients:\n", recipeTitle)
	for i, ing := range recipeIngredients {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, ing)
	}
	sb.WriteString("\nInventory (id | name | quantity):\n")
	for _, item := range inventory {
		unit := item.Unit
		if unit == "" {
			unit = "count"
		}
		fmt.Fprintf(&sb, "- %s | %s | %g %s\n", item.ID, item.Name, item.Quantity, unit)
	}
	sb.WriteString(`
Match each ingredient to at most one inventory item. Respond with exactly one JSON object, no markdown, in this shape:
{"matches":[{"recipeIngredient":"<ingredient text verbatim>","matchedInventoryId":"<inventory id>","suggestedDeduction":<number of units the recipe consumes>,"confidence":"high"|"medium"|"low"}],"unmatched":["<ingredient text verbatim>"]}
Rules:
1. Use ingredient strings verbatim from the list above.
2. Only use inventory ids from the list above; never invent ids.
3. Every ingredient appears exactly once, in matches or in unmatched.
4. suggestedDeduction is your best estimate in the item's units; use 1 when unsure.
`)
	return sb.String()
}
