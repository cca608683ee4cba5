// Package session binds one shopper's cart engine, design history and
// reconciliation coordinator together behind the public cart operations.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/reconcile"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

// Session is the operation surface for a single browsing session.
type Session struct {
	id      string
	engine  *cart.Engine
	history *design.HistoryStack
	coord   *reconcile.Coordinator
	gateway cart.PersistenceGateway
	logg    *logger.Logger
	now     func() time.Time

	authMu   sync.Mutex
	lastSeen atomic.Int64
	detach   []func()
	closed   atomic.Bool
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Bus returns the session's event bus.
func (s *Session) Bus() *events.Bus { return s.engine.Bus() }

// Engine exposes the underlying cart engine.
func (s *Session) Engine() *cart.Engine { return s.engine }

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load()).UTC()
}

func (s *Session) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

func (s *Session) ctx(ctx context.Context) context.Context {
	s.touch()
	return s.logg.WithSessionID(ctx, s.id)
}

func (s *Session) AddItem(ctx context.Context, item cart.ItemInput, quantity int) (cart.State, error) {
	return s.engine.AddItem(s.ctx(ctx), item, quantity, cart.AddOptions{})
}

func (s *Session) RemoveItem(ctx context.Context, lineItemID string) (cart.State, error) {
	return s.engine.RemoveItem(s.ctx(ctx), lineItemID)
}

func (s *Session) UpdateItemQuantity(ctx context.Context, lineItemID string, quantity int) (cart.State, error) {
	return s.engine.UpdateItemQuantity(s.ctx(ctx), lineItemID, quantity)
}

func (s *Session) ClearCart(ctx context.Context) (cart.State, error) {
	return s.engine.ClearCart(s.ctx(ctx))
}

func (s *Session) ValidateInventory(ctx context.Context) (cart.ValidationResult, error) {
	return s.engine.ValidateInventory(s.ctx(ctx))
}

func (s *Session) Undo(ctx context.Context) (cart.State, bool, error) {
	return s.engine.Undo(s.ctx(ctx))
}

func (s *Session) Redo(ctx context.Context) (cart.State, bool, error) {
	return s.engine.Redo(s.ctx(ctx))
}

func (s *Session) CanUndo() bool { return s.engine.CanUndo() }

func (s *Session) CanRedo() bool { return s.engine.CanRedo() }

// GetCartState returns a copy of the committed cart.
func (s *Session) GetCartState() cart.State {
	s.touch()
	return s.engine.Snapshot()
}

// GetCartSummary digests the committed cart.
func (s *Session) GetCartSummary() cart.Summary {
	s.touch()
	return s.engine.Summary()
}

// ExportDesignToCart adds a design snapshot to the cart as a custom line.
// An empty snapshotID exports the current history entry.
func (s *Session) ExportDesignToCart(ctx context.Context, snapshotID string, meta reconcile.ExportMetadata) (cart.LineItem, cart.State, error) {
	ctx = s.ctx(ctx)
	snap, err := s.findSnapshot(snapshotID)
	if err != nil {
		return cart.LineItem{}, s.engine.Snapshot(), err
	}
	return s.coord.ExportToCart(ctx, snap, meta)
}

func (s *Session) findSnapshot(id string) (design.Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		snap, ok := s.history.Current()
		if !ok {
			return design.Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "design history is empty")
		}
		return snap, nil
	}
	for _, snap := range s.history.Entries() {
		if snap.ID == id {
			return snap, nil
		}
	}
	return design.Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "design snapshot not found").
		WithDetails(map[string]any{"snapshotId": id})
}

// PushDesign records an edit. It reports false when the design is
// equivalent to the current entry.
func (s *Session) PushDesign(d design.Design) (design.Snapshot, bool, error) {
	s.touch()
	if err := d.Validate(); err != nil {
		return design.Snapshot{}, false, err
	}
	snap, added := s.history.PushDesign(d)
	return snap, added, nil
}

func (s *Session) UndoDesign() (design.Snapshot, bool) {
	s.touch()
	return s.history.Undo()
}

func (s *Session) RedoDesign() (design.Snapshot, bool) {
	s.touch()
	return s.history.Redo()
}

func (s *Session) CurrentDesign() (design.Snapshot, bool) {
	s.touch()
	return s.history.Current()
}

func (s *Session) CanUndoDesign() bool { return s.history.CanUndo() }

func (s *Session) CanRedoDesign() bool { return s.history.CanRedo() }

func (s *Session) DesignHistoryLen() int { return s.history.Len() }

func (s *Session) DesignHistory() []design.Snapshot {
	s.touch()
	return s.history.Entries()
}

func (s *Session) MarkMilestone(label string) error {
	s.touch()
	return s.history.MarkMilestone(label)
}

func (s *Session) CreateDesignBundle(name string) (design.Bundle, error) {
	s.touch()
	return s.history.CreateBundle(name)
}

func (s *Session) LoadDesignBundle(b design.Bundle) (design.Snapshot, error) {
	s.touch()
	return s.history.LoadBundle(b)
}

// SignIn attaches the cart to identityID: the stored identity cart is
// loaded, the guest cart merged into it, and the guest copy cleared once
// the merge has been committed.
func (s *Session) SignIn(ctx context.Context, identityID string) (cart.State, cart.MergeReport, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return s.engine.Snapshot(), cart.MergeReport{}, pkgerrors.New(pkgerrors.CodeValidation, "identity id is required")
	}
	ctx = s.logg.WithIdentityID(s.ctx(ctx), identityID)

	s.authMu.Lock()
	defer s.authMu.Unlock()

	if current := s.engine.Snapshot(); !current.IsGuest() {
		if *current.IdentityID == identityID {
			return current, cart.MergeReport{}, nil
		}
		return current, cart.MergeReport{}, pkgerrors.New(pkgerrors.CodeConflict, "session is signed in as another identity")
	}

	guest, _, err := s.engine.SwapState(ctx, func(cart.State) (cart.State, error) {
		stored, err := s.gateway.Load(ctx, cart.IdentityScope(identityID))
		if err != nil {
			return cart.State{}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load identity cart")
		}
		base := cart.NewState(s.id, &identityID)
		if stored != nil {
			base = stored.Clone()
			base.SessionID = s.id
			base.IdentityID = &identityID
		}
		return base, nil
	})
	if err != nil {
		return guest, cart.MergeReport{}, err
	}

	merged, report, err := s.engine.MergeGuestCart(ctx, guest)
	if err != nil {
		s.logg.Error(ctx, "guest cart merge failed", err)
		return merged, report, err
	}

	s.engine.WaitForPersistence()
	if err := s.engine.Flush(ctx); err != nil {
		s.logg.Warn(ctx, "identity cart flush after sign-in failed: "+err.Error())
	}
	if err := s.gateway.Clear(ctx, cart.GuestScope(s.id)); err != nil {
		s.logg.Warn(ctx, "guest cart clear failed: "+err.Error())
	}

	rep := report
	s.publish(ctx, enums.CartEventUserLoggedIn, cart.EventPayload{Operation: "sign_in", State: merged.Clone(), Merge: &rep})
	s.logg.Info(ctx, "session signed in")
	return merged, report, nil
}

// SignOut saves the identity cart and leaves the session with an empty
// guest cart. Signing out a guest session is a no-op.
func (s *Session) SignOut(ctx context.Context) (cart.State, error) {
	ctx = s.ctx(ctx)
	s.authMu.Lock()
	defer s.authMu.Unlock()

	current := s.engine.Snapshot()
	if current.IsGuest() {
		return current, nil
	}
	ctx = s.logg.WithIdentityID(ctx, *current.IdentityID)

	previous, next, err := s.engine.SwapState(ctx, func(cart.State) (cart.State, error) {
		return cart.NewState(s.id, nil), nil
	})
	if err != nil {
		return previous, err
	}
	s.publish(ctx, enums.CartEventUserLoggedOut, cart.EventPayload{
		Operation:          "sign_out",
		State:              next.Clone(),
		RemovedLineItemIDs: previous.LineItemIDs(),
	})
	s.logg.Info(ctx, "session signed out")
	return next, nil
}

// Sync forces a save of the committed cart.
func (s *Session) Sync(ctx context.Context) (cart.State, error) {
	ctx = s.ctx(ctx)
	s.engine.WaitForPersistence()
	state := s.engine.Snapshot()
	if err := s.engine.Flush(ctx); err != nil {
		payload := cart.EventPayload{Operation: "sync", State: state, Error: err.Error()}
		if typed := pkgerrors.As(err); typed != nil {
			payload.ErrorCode = string(typed.Code())
		}
		s.publish(ctx, enums.CartEventError, payload)
		return state, err
	}
	s.publish(ctx, enums.CartEventSynced, cart.EventPayload{Operation: "sync", State: state})
	return state, nil
}

// Close saves pending changes and stops listening on the bus.
func (s *Session) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx = s.logg.WithSessionID(ctx, s.id)
	s.engine.WaitForPersistence()
	err := s.engine.Flush(ctx)
	s.coord.Detach()
	for _, fn := range s.detach {
		fn()
	}
	return err
}

func (s *Session) publish(ctx context.Context, eventType enums.CartEventType, payload cart.EventPayload) {
	s.engine.Bus().Publish(ctx, events.Event{
		Type:      eventType,
		SessionID: s.id,
		Payload:   payload,
	})
}
