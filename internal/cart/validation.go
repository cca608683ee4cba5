package cart

import (
	"context"
	"sort"

	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ItemIssue describes one line item that failed validation.
type ItemIssue struct {
	LineItemID        string                    `json:"lineItemId"`
	Title             string                    `json:"title"`
	Reason            enums.CartItemWarningType `json:"reason"`
	ComponentID       string                    `json:"componentId,omitempty"`
	RequestedQuantity int                       `json:"requestedQuantity,omitempty"`
	AvailableQuantity int                       `json:"availableQuantity,omitempty"`
	PreviousPrice     decimal.NullDecimal       `json:"previousPrice,omitempty"`
	CurrentPrice      decimal.NullDecimal       `json:"currentPrice,omitempty"`
}

// ValidationResult buckets the line items that need attention before checkout.
type ValidationResult struct {
	InvalidItems     []ItemIssue `json:"invalidItems"`
	QuantityAdjusted []ItemIssue `json:"quantityAdjusted"`
	PriceChanged     []ItemIssue `json:"priceChanged"`
	IsValid          bool        `json:"isValid"`
}

// ValidateInventory checks every line item against the oracle without
// changing the cart. Custom designs are checked through their components.
func (e *Engine) ValidateInventory(ctx context.Context) (ValidationResult, error) {
	state := e.store.Snapshot()
	result := ValidationResult{
		InvalidItems:     []ItemIssue{},
		QuantityAdjusted: []ItemIssue{},
		PriceChanged:     []ItemIssue{},
	}

	for _, line := range state.Items {
		var err error
		if line.IsCustomDesign {
			err = e.validateDesignLine(ctx, line, &result)
		} else {
			err = e.validateCatalogLine(ctx, line, &result)
		}
		if err != nil {
			e.metrics.ObserveOperation("validate_inventory", err)
			e.publishFailure(ctx, "validate_inventory", state, err)
			return ValidationResult{}, err
		}
	}

	result.IsValid = len(result.InvalidItems) == 0 && len(result.QuantityAdjusted) == 0 && len(result.PriceChanged) == 0
	e.metrics.ObserveOperation("validate_inventory", nil)
	if !result.IsValid {
		res := result
		e.publish(ctx, state.SessionID, enums.CartEventValidationFailed, EventPayload{
			Operation:  "validate_inventory",
			State:      state,
			Validation: &res,
		})
	}
	return result, nil
}

func (e *Engine) validateCatalogLine(ctx context.Context, line LineItem, result *ValidationResult) error {
	issue := ItemIssue{LineItemID: line.ID, Title: line.Title, RequestedQuantity: line.Quantity}
	item, err := e.oracle.GetItem(ctx, line.ID)
	if err != nil {
		if inventory.IsNotFound(err) {
			issue.Reason = enums.CartItemWarningTypeNotFound
			result.InvalidItems = append(result.InvalidItems, issue)
			return nil
		}
		return dependencyError(line.ID, err)
	}
	if !item.Purchasable() {
		issue.Reason = enums.CartItemWarningTypeInactive
		result.InvalidItems = append(result.InvalidItems, issue)
		return nil
	}
	if item.QuantityAvailable < line.Quantity {
		adjusted := issue
		adjusted.Reason = enums.CartItemWarningTypeInsufficientStock
		adjusted.AvailableQuantity = item.QuantityAvailable
		result.QuantityAdjusted = append(result.QuantityAdjusted, adjusted)
	}
	if !item.Price.Equal(line.Price) {
		changed := issue
		changed.Reason = enums.CartItemWarningTypePriceChanged
		changed.PreviousPrice = decimal.NewNullDecimal(line.Price)
		changed.CurrentPrice = decimal.NewNullDecimal(item.Price)
		result.PriceChanged = append(result.PriceChanged, changed)
	}
	return nil
}

func (e *Engine) validateDesignLine(ctx context.Context, line LineItem, result *ValidationResult) error {
	if line.Design == nil {
		return nil
	}
	issue := ItemIssue{LineItemID: line.ID, Title: line.Title, RequestedQuantity: line.Quantity}
	counts := line.Design.Design.ComponentCounts()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	resolved := make(map[string]*inventory.Item, len(ids))
	available := -1
	for _, id := range ids {
		item, err := e.oracle.GetItem(ctx, id)
		if err != nil {
			if inventory.IsNotFound(err) {
				issue.Reason = enums.CartItemWarningTypeComponentMissing
				issue.ComponentID = id
				result.InvalidItems = append(result.InvalidItems, issue)
				return nil
			}
			return dependencyError(id, err)
		}
		if !item.Purchasable() {
			issue.Reason = enums.CartItemWarningTypeInactive
			issue.ComponentID = id
			result.InvalidItems = append(result.InvalidItems, issue)
			return nil
		}
		resolved[id] = item
		if fits := item.QuantityAvailable / counts[id]; available < 0 || fits < available {
			available = fits
		}
	}

	if available >= 0 && available < line.Quantity {
		adjusted := issue
		adjusted.Reason = enums.CartItemWarningTypeInsufficientStock
		adjusted.AvailableQuantity = available
		result.QuantityAdjusted = append(result.QuantityAdjusted, adjusted)
	}

	quote := inventory.QuoteFromItems(resolved, line.Design.Design.ComponentIDs(), e.cfg.DesignBaseFee)
	if !quote.Price.Equal(line.Price) {
		changed := issue
		changed.Reason = enums.CartItemWarningTypePriceChanged
		changed.PreviousPrice = decimal.NewNullDecimal(line.Price)
		changed.CurrentPrice = decimal.NewNullDecimal(quote.Price)
		result.PriceChanged = append(result.PriceChanged, changed)
	}
	return nil
}
