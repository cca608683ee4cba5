package design

import (
	"sync"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/history"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

// HistoryConfig bounds a HistoryStack.
type HistoryConfig struct {
	MaxEntries        int
	PositionTolerance float64
	RotationTolerance float64
}

func (c HistoryConfig) withDefaults() HistoryConfig {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 50
	}
	if c.PositionTolerance < 0 {
		c.PositionTolerance = 0
	}
	if c.RotationTolerance < 0 {
		c.RotationTolerance = 0
	}
	return c
}

// HistoryStack is the design editor's bounded undo/redo history.
type HistoryStack struct {
	mu    sync.Mutex
	stack *history.Stack[Snapshot]
	tol   Tolerance
	now   func() time.Time
}

func NewHistoryStack(cfg HistoryConfig) *HistoryStack {
	cfg = cfg.withDefaults()
	return &HistoryStack{
		stack: history.New(cfg.MaxEntries, Snapshot.Clone),
		tol:   Tolerance{Position: cfg.PositionTolerance, Rotation: cfg.RotationTolerance},
		now:   time.Now,
	}
}

// Push records snap unless it is equivalent to the entry at the cursor.
func (h *HistoryStack) Push(snap Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.stack.Current(); ok && Equivalent(cur.Design, snap.Design, h.tol) {
		return false
	}
	if snap.ID == "" {
		fresh := NewSnapshot(snap.Design, h.now())
		snap.ID, snap.CreatedAt = fresh.ID, fresh.CreatedAt
	}
	h.stack.Push(snap)
	return true
}

// PushDesign captures d and pushes it.
func (h *HistoryStack) PushDesign(d Design) (Snapshot, bool) {
	snap := NewSnapshot(d, h.now())
	return snap, h.Push(snap)
}

func (h *HistoryStack) Undo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Undo()
}

func (h *HistoryStack) Redo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Redo()
}

func (h *HistoryStack) Current() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Current()
}

func (h *HistoryStack) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.CanUndo()
}

func (h *HistoryStack) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.CanRedo()
}

func (h *HistoryStack) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Len()
}

func (h *HistoryStack) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Cursor()
}

// Entries returns copies of the retained snapshots, oldest first.
func (h *HistoryStack) Entries() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.Entries()
}

// MarkMilestone labels the entry at the cursor.
func (h *HistoryStack) MarkMilestone(label string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stack.UpdateCurrent(func(s *Snapshot) { s.Milestone = label }) {
		return errEmptyHistory()
	}
	return nil
}

// MarkExported records that the entry at the cursor became lineItemID.
func (h *HistoryStack) MarkExported(lineItemID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stack.UpdateCurrent(func(s *Snapshot) { s.ExportedLineItemID = lineItemID }) {
		return errEmptyHistory()
	}
	return nil
}

// MarkExportedSnapshot marks the entry with the given id, wherever the cursor is.
func (h *HistoryStack) MarkExportedSnapshot(snapshotID, lineItemID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	found := h.stack.UpdateEach(func(s *Snapshot) bool {
		if s.ID != snapshotID {
			return false
		}
		s.ExportedLineItemID = lineItemID
		return true
	})
	if found == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "design snapshot not in history")
	}
	return nil
}

// ClearExported removes the exported marker from every entry tied to
// lineItemID and returns how many entries changed.
func (h *HistoryStack) ClearExported(lineItemID string) int {
	if lineItemID == "" {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.UpdateEach(func(s *Snapshot) bool {
		if s.ExportedLineItemID != lineItemID {
			return false
		}
		s.ExportedLineItemID = ""
		return true
	})
}

// ExportedLineItemIDs lists the distinct line items currently referenced by history.
func (h *HistoryStack) ExportedLineItemIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []string
	seen := map[string]struct{}{}
	for _, s := range h.stack.Entries() {
		if !s.Exported() {
			continue
		}
		if _, ok := seen[s.ExportedLineItemID]; ok {
			continue
		}
		seen[s.ExportedLineItemID] = struct{}{}
		ids = append(ids, s.ExportedLineItemID)
	}
	return ids
}

func (h *HistoryStack) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack.Reset()
}

func errEmptyHistory() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "design history is empty")
}
