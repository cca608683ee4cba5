// Package history implements a bounded undo/redo stack with branch-overwrite semantics.
package history

// Stack is a bounded cursor-addressed history. It is not safe for concurrent
// use; owners guard it with their own lock.
type Stack[T any] struct {
	entries []T
	cursor  int
	max     int
	clone   func(T) T
}

// New returns an empty stack retaining at most max entries. clone is applied to
// every value entering or leaving the stack; nil means values are copied as-is.
func New[T any](max int, clone func(T) T) *Stack[T] {
	if max <= 0 {
		max = 1
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Stack[T]{cursor: -1, max: max, clone: clone}
}

// Push discards entries after the cursor, appends v and evicts from the front
// past the maximum. It returns the number of evicted entries.
func (s *Stack[T]) Push(v T) int {
	s.entries = append(s.entries[:s.cursor+1], s.clone(v))
	s.cursor = len(s.entries) - 1

	evicted := 0
	if over := len(s.entries) - s.max; over > 0 {
		clear(s.entries[:over])
		s.entries = append(s.entries[:0], s.entries[over:]...)
		s.cursor -= over
		evicted = over
	}
	return evicted
}

// Current returns a copy of the entry at the cursor.
func (s *Stack[T]) Current() (T, bool) {
	if s.cursor < 0 {
		var zero T
		return zero, false
	}
	return s.clone(s.entries[s.cursor]), true
}

// Undo moves the cursor back one step.
func (s *Stack[T]) Undo() (T, bool) {
	if !s.CanUndo() {
		var zero T
		return zero, false
	}
	s.cursor--
	return s.clone(s.entries[s.cursor]), true
}

// Redo moves the cursor forward one step.
func (s *Stack[T]) Redo() (T, bool) {
	if !s.CanRedo() {
		var zero T
		return zero, false
	}
	s.cursor++
	return s.clone(s.entries[s.cursor]), true
}

func (s *Stack[T]) CanUndo() bool { return s.cursor > 0 }

func (s *Stack[T]) CanRedo() bool { return s.cursor >= 0 && s.cursor < len(s.entries)-1 }

func (s *Stack[T]) Len() int { return len(s.entries) }

// Cursor returns the current index, or -1 for an empty stack.
func (s *Stack[T]) Cursor() int { return s.cursor }

func (s *Stack[T]) Max() int { return s.max }

// Entries returns copies of every retained entry, oldest first.
func (s *Stack[T]) Entries() []T {
	out := make([]T, len(s.entries))
	for i, e := range s.entries {
		out[i] = s.clone(e)
	}
	return out
}

// UpdateCurrent applies fn to the entry at the cursor in place.
func (s *Stack[T]) UpdateCurrent(fn func(*T)) bool {
	if s.cursor < 0 {
		return false
	}
	fn(&s.entries[s.cursor])
	return true
}

// UpdateEach applies fn to every entry in place and returns how many calls
// reported a change.
func (s *Stack[T]) UpdateEach(fn func(*T) bool) int {
	changed := 0
	for i := range s.entries {
		if fn(&s.entries[i]) {
			changed++
		}
	}
	return changed
}

// Reset drops every entry.
func (s *Stack[T]) Reset() {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.cursor = -1
}
