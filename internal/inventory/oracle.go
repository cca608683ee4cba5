// Package inventory answers price and stock questions for catalog items.
package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when the catalog has no item with the requested id.
var ErrItemNotFound = errors.New("inventory item not found")

// Item is the live view of a catalog item.
type Item struct {
	ID                string
	Title             string
	Price             decimal.Decimal
	Status            enums.CatalogItemStatus
	QuantityAvailable int
}

// Purchasable reports whether the item can be sold at all.
func (i Item) Purchasable() bool {
	return i.Status.IsPurchasable()
}

// Oracle looks up catalog items. Implementations may be slow, stale or fail.
type Oracle interface {
	GetItem(ctx context.Context, id string) (*Item, error)
}

// MemoryOracle serves items from a map. Used for local runs and tests.
type MemoryOracle struct {
	mu    sync.RWMutex
	items map[string]Item
	errs  map[string]error
	calls map[string]int
}

func NewMemoryOracle(items ...Item) *MemoryOracle {
	m := &MemoryOracle{
		items: make(map[string]Item, len(items)),
		errs:  map[string]error{},
		calls: map[string]int{},
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *MemoryOracle) GetItem(_ context.Context, id string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id]++
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// Set inserts or replaces an item.
func (m *MemoryOracle) Set(item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

// Fail makes lookups of id return err until cleared with a nil err.
func (m *MemoryOracle) Fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, id)
		return
	}
	m.errs[id] = err
}

// Calls returns how many lookups id has received.
func (m *MemoryOracle) Calls(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[id]
}
