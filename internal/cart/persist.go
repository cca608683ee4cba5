package cart

import (
	"context"

	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
)

// persistAsync saves state on a background goroutine. Failures leave the
// cart dirty for the next Flush.
func (e *Engine) persistAsync(ctx context.Context, state State) {
	ctx = context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		if err := e.save(ctx, state); err != nil {
			e.logg.Warn(e.logg.WithSessionID(ctx, state.SessionID), "cart persistence deferred: "+err.Error())
		}
	}()
}

// save writes state unless a newer version is already stored.
func (e *Engine) save(ctx context.Context, state State) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	if state.Version <= e.savedVersion {
		return nil
	}

	scope := ScopeFor(state)
	saveCtx, cancel := context.WithTimeout(ctx, e.cfg.SaveTimeout)
	defer cancel()
	if err := e.gateway.Save(saveCtx, scope, state); err != nil {
		e.metrics.IncPersistenceFailure(scope.Kind.String())
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save cart to "+scope.String())
	}
	e.savedVersion = state.Version
	return nil
}

// Dirty reports whether the committed cart is newer than the last successful save.
func (e *Engine) Dirty() bool {
	version := e.store.Snapshot().Version
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	return version > e.savedVersion
}

// Flush synchronously saves the committed cart if it is dirty.
func (e *Engine) Flush(ctx context.Context) error {
	return e.save(ctx, e.store.Snapshot())
}

// WaitForPersistence blocks until in-flight background saves finish.
func (e *Engine) WaitForPersistence() {
	e.pending.Wait()
}
