package cart

import (
	"context"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
)

func (e *Engine) CanUndo() bool {
	e.histMu.Lock()
	defer e.histMu.Unlock()
	return e.undo.CanUndo()
}

func (e *Engine) CanRedo() bool {
	e.histMu.Lock()
	defer e.histMu.Unlock()
	return e.undo.CanRedo()
}

// Undo restores the line items of the previous commit. It reports false
// when there is nothing to undo.
func (e *Engine) Undo(ctx context.Context) (State, bool, error) {
	return e.travel(ctx, "undo", enums.CartEventUndone, func() (State, bool) {
		return e.undo.Undo()
	})
}

// Redo reapplies the commit most recently undone.
func (e *Engine) Redo(ctx context.Context) (State, bool, error) {
	return e.travel(ctx, "redo", enums.CartEventRedone, func() (State, bool) {
		return e.undo.Redo()
	})
}

// travel moves through commit history. Restored items are not re-validated
// against inventory.
func (e *Engine) travel(ctx context.Context, op string, eventType enums.CartEventType, step func() (State, bool)) (State, bool, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return e.store.Snapshot(), false, err
	}
	committed := e.store.Snapshot()

	e.histMu.Lock()
	target, ok := step()
	e.histMu.Unlock()
	if !ok {
		e.sem.Release(1)
		return committed, false, nil
	}

	working := committed.Clone()
	working.Items = target.Clone().Items
	next := e.commitLocked(committed, working, false)
	e.sem.Release(1)

	e.metrics.ObserveOperation(op, nil)
	e.persistAsync(ctx, next)
	e.publish(ctx, next.SessionID, eventType, EventPayload{
		Operation:          op,
		State:              next.Clone(),
		RemovedLineItemIDs: removedIDs(committed, next),
	})
	e.publish(ctx, next.SessionID, enums.CartEventUpdated, EventPayload{Operation: op, State: next.Clone()})
	return next, true, nil
}
