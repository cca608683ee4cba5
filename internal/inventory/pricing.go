package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Quote is the price of a custom design.
type Quote struct {
	Price decimal.Decimal
	// Unresolved lists component ids that contributed nothing to Price.
	Unresolved []string
}

// QuoteDesign prices a design as baseFee plus the catalog price of every
// component use. Components the oracle cannot resolve contribute zero.
func QuoteDesign(ctx context.Context, oracle Oracle, componentIDs []string, baseFee decimal.Decimal) Quote {
	items := make(map[string]*Item, len(componentIDs))
	for _, id := range componentIDs {
		if _, seen := items[id]; seen {
			continue
		}
		item, err := oracle.GetItem(ctx, id)
		if err != nil {
			item = nil
		}
		items[id] = item
	}
	return QuoteFromItems(items, componentIDs, baseFee)
}

// QuoteFromItems prices a design from already resolved items. A nil entry or
// a missing key marks the component unresolved.
func QuoteFromItems(items map[string]*Item, componentIDs []string, baseFee decimal.Decimal) Quote {
	q := Quote{Price: baseFee}
	reported := map[string]struct{}{}
	for _, id := range componentIDs {
		item := items[id]
		if item == nil {
			if _, ok := reported[id]; !ok {
				reported[id] = struct{}{}
				q.Unresolved = append(q.Unresolved, id)
			}
			continue
		}
		q.Price = q.Price.Add(item.Price)
	}
	q.Price = q.Price.Round(2)
	return q
}

// IsNotFound reports whether err means the item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
