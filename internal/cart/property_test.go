//go:build property
// +build property

package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

var propertyCatalog = []inventory.Item{
	activeItem("p0", "0.99", 1000),
	activeItem("p1", "12.49", 1000),
	activeItem("p2", "33.33", 1000),
	activeItem("p3", "7.05", 1000),
}

func newPropertyEngine(t *testing.T) *Engine {
	engine, err := NewEngine(Params{
		Config:  testConfig(),
		Oracle:  inventory.NewMemoryOracle(propertyCatalog...),
		Gateway: newStubGateway(),
		Logger:  testLogger(),
		Initial: NewState("prop", nil),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func applyOp(ctx context.Context, e *Engine, op, pick, qty int) {
	item := propertyCatalog[pick%len(propertyCatalog)]
	input := ItemInput{ID: item.ID, Title: item.ID, Price: decimal.NewNullDecimal(item.Price)}
	switch op % 5 {
	case 0, 1:
		_, _ = e.AddItem(ctx, input, qty, AddOptions{})
	case 2:
		_, _ = e.RemoveItem(ctx, item.ID)
	case 3:
		_, _ = e.UpdateItemQuantity(ctx, item.ID, qty)
	case 4:
		_, _, _ = e.Undo(ctx)
	}
}

func totalsHold(s State) bool {
	sum := decimal.Zero
	count := 0
	for _, item := range s.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	want := s.Subtotal.Add(s.Tax).Add(s.Shipping).Sub(s.Discount).Round(2)
	return s.Total.Equal(want) && s.Subtotal.Equal(sum.Round(2)) && s.ItemCount == count
}

func TestCartTotalsInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("totals and item count stay consistent", prop.ForAll(
		func(ops []int, picks []int, qtys []int) bool {
			ctx := context.Background()
			e := newPropertyEngine(t)
			for i := 0; i < len(ops) && i < len(picks) && i < len(qtys); i++ {
				applyOp(ctx, e, ops[i], picks[i], qtys[i])
				if !totalsHold(e.Snapshot()) {
					return false
				}
			}
			e.WaitForPersistence()
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.IntRange(1, 12)),
	))

	properties.TestingRun(t)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("adding then removing a new line restores the cart", prop.ForAll(
		func(seed []int, qty int, price int) bool {
			ctx := context.Background()
			e := newPropertyEngine(t)
			for i, s := range seed {
				applyOp(ctx, e, 0, s, 1+i%3)
			}
			before := e.Snapshot()
			input := ItemInput{
				ID:    "fresh",
				Title: "fresh",
				Price: decimal.NewNullDecimal(decimal.New(int64(price), -2)),
			}
			if _, err := e.AddItem(ctx, input, qty, AddOptions{SkipValidation: true}); err != nil {
				return len(before.Items) >= e.Config().MaxLineItems
			}
			after, err := e.RemoveItem(ctx, "fresh")
			if err != nil {
				return false
			}
			e.WaitForPersistence()
			return fmt.Sprint(stripVolatile(before)) == fmt.Sprint(stripVolatile(after))
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(1, 10),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t)
}

func TestMergeIdempotenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("merging the same guest cart twice equals merging once", prop.ForAll(
		func(picks []int, qtys []int) bool {
			ctx := context.Background()
			guest := NewState("guest", nil)
			for i := 0; i < len(picks) && i < len(qtys); i++ {
				item := propertyCatalog[picks[i]%len(propertyCatalog)]
				if _, ok := guest.Find(item.ID); ok {
					continue
				}
				guest.Items = append(guest.Items, LineItem{ID: item.ID, Title: item.ID, Price: item.Price, Quantity: qtys[i]})
			}

			e := newPropertyEngine(t)
			once, _, err := e.MergeGuestCart(ctx, guest)
			if err != nil {
				return false
			}
			twice, _, err := e.MergeGuestCart(ctx, guest)
			if err != nil {
				return false
			}
			e.WaitForPersistence()
			return once.Version == twice.Version && fmt.Sprint(once.Items) == fmt.Sprint(twice.Items)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.IntRange(1, 10)),
	))

	properties.TestingRun(t)
}
