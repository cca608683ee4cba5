package persistence

import (
	"context"
	"sync"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
)

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[cart.Scope]cart.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[cart.Scope]cart.State{}}
}

func (m *MemoryStore) Load(_ context.Context, scope cart.Scope) (*cart.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.carts[scope]
	if !ok {
		return nil, nil
	}
	out := state.Clone()
	return &out, nil
}

func (m *MemoryStore) Save(_ context.Context, scope cart.Scope, state cart.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.carts[scope]; ok && existing.LastUpdated.After(state.LastUpdated) {
		return nil
	}
	m.carts[scope] = state.Clone()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, scope cart.Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, scope)
	return nil
}

// Len reports how many carts are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.carts)
}
