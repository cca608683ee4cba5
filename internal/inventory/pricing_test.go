package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteDesign(t *testing.T) {
	oracle := NewMemoryOracle(
		Item{ID: "chain-gold", Price: decimal.RequireFromString("30.00"), Status: enums.CatalogItemStatusActive},
		Item{ID: "charm-star", Price: decimal.RequireFromString("4.25"), Status: enums.CatalogItemStatusActive},
	)
	oracle.Fail("charm-broken", errors.New("timeout"))

	q := QuoteDesign(context.Background(), oracle,
		[]string{"chain-gold", "charm-star", "charm-star", "charm-ghost", "charm-broken"},
		decimal.NewFromInt(5))

	assert.Equal(t, "43.5", q.Price.String())
	assert.Equal(t, []string{"charm-ghost", "charm-broken"}, q.Unresolved)
	assert.Equal(t, 1, oracle.Calls("charm-star"))
}

func TestQuoteFromItemsBaseFeeOnly(t *testing.T) {
	q := QuoteFromItems(nil, nil, decimal.RequireFromString("5"))
	assert.True(t, q.Price.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, q.Unresolved)
	assert.True(t, IsNotFound(ErrItemNotFound))
}
