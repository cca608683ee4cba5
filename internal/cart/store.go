package cart

import "sync"

// Store holds the committed cart state.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial.Clone()}
}

// Snapshot returns a deep copy of the committed state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace commits next. Only the Engine calls it.
func (s *Store) Replace(next State) {
	next = next.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}
