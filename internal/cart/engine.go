package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/history"
	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/angelmondragon/charmcart-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// ItemInput describes a line item to add.
type ItemInput struct {
	ID             string
	Title          string
	Price          decimal.NullDecimal
	IsCustomDesign bool
	Design         *design.Snapshot
	Metadata       map[string]string
}

// AddOptions tunes a single AddItem call.
type AddOptions struct {
	// SkipValidation bypasses the inventory lookup.
	SkipValidation bool
}

// Params wires an Engine.
type Params struct {
	Config  Config
	Oracle  inventory.Oracle
	Gateway PersistenceGateway
	Bus     *events.Bus
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
	Initial State
	Clock   func() time.Time
}

// Engine is the only writer of a cart. Mutations are serialized in FIFO
// order; each one works on a copy that is committed only on success.
type Engine struct {
	cfg     Config
	oracle  inventory.Oracle
	gateway PersistenceGateway
	bus     *events.Bus
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time

	store *Store
	sem   *semaphore.Weighted

	histMu sync.Mutex
	undo   *history.Stack[State]

	persistMu    sync.Mutex
	savedVersion int64
	pending      sync.WaitGroup
}

// NewEngine validates its dependencies and recomputes the initial state.
func NewEngine(p Params) (*Engine, error) {
	if p.Oracle == nil {
		return nil, fmt.Errorf("inventory oracle required")
	}
	if p.Gateway == nil {
		return nil, fmt.Errorf("persistence gateway required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(p.Initial.SessionID) == "" {
		return nil, fmt.Errorf("initial state requires a session id")
	}
	bus := p.Bus
	if bus == nil {
		bus = events.NewBus(p.Logger)
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	cfg := p.Config.withDefaults()

	initial := p.Initial.Clone()
	if initial.Items == nil {
		initial.Items = []LineItem{}
	}
	initial = Recompute(initial, cfg.Pricing)

	e := &Engine{
		cfg:          cfg,
		oracle:       p.Oracle,
		gateway:      p.Gateway,
		bus:          bus,
		logg:         p.Logger,
		metrics:      p.Metrics,
		now:          clock,
		store:        NewStore(initial),
		sem:          semaphore.NewWeighted(1),
		undo:         history.New(cfg.UndoDepth+1, State.Clone),
		savedVersion: initial.Version,
	}
	e.undo.Push(initial)
	return e, nil
}

// Bus returns the engine's event bus.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Config returns the resolved configuration.
func (e *Engine) Config() Config { return e.cfg }

// Snapshot returns a copy of the committed cart.
func (e *Engine) Snapshot() State { return e.store.Snapshot() }

// Summary digests the committed cart.
func (e *Engine) Summary() Summary { return Summarize(e.store.Snapshot(), e.cfg.Pricing) }

type outcome struct {
	event   enums.CartEventType
	payload EventPayload
	noop    bool
}

// run serializes one mutation. fn edits working in place; the result is
// committed only when fn succeeds and reports a change.
func (e *Engine) run(ctx context.Context, op string, fn func(working *State) (outcome, error)) (State, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return e.store.Snapshot(), err
	}
	committed := e.store.Snapshot()
	working := committed.Clone()
	out, err := fn(&working)
	if err != nil {
		e.sem.Release(1)
		e.metrics.ObserveOperation(op, err)
		e.publishFailure(ctx, op, committed, err)
		return committed, err
	}
	if out.noop {
		e.sem.Release(1)
		e.metrics.ObserveOperation(op, nil)
		return committed, nil
	}

	next := e.commitLocked(committed, working, true)
	e.sem.Release(1)

	e.metrics.ObserveOperation(op, nil)
	e.persistAsync(ctx, next)
	out.payload.Operation = op
	out.payload.State = next.Clone()
	e.publish(ctx, next.SessionID, out.event, out.payload)
	if out.event != enums.CartEventUpdated {
		e.publish(ctx, next.SessionID, enums.CartEventUpdated, EventPayload{Operation: op, State: next.Clone()})
	}
	return next, nil
}

// commitLocked stamps, recomputes and stores working. Callers hold sem.
func (e *Engine) commitLocked(prev, working State, record bool) State {
	working.Version = prev.Version + 1
	working.LastUpdated = e.nextTimestamp(prev.LastUpdated)
	next := Recompute(working, e.cfg.Pricing)
	e.store.Replace(next)
	if record {
		e.histMu.Lock()
		e.undo.Push(next)
		depth := e.undo.Cursor()
		e.histMu.Unlock()
		e.metrics.SetHistoryDepth("cart", depth)
	}
	return next
}

func (e *Engine) nextTimestamp(prev time.Time) time.Time {
	ts := e.now().UTC().Truncate(time.Microsecond)
	if !ts.After(prev) {
		ts = prev.Add(time.Microsecond)
	}
	return ts
}

// AddItem adds quantity units of item. An existing catalog line is
// updated to the summed quantity instead of duplicated.
func (e *Engine) AddItem(ctx context.Context, item ItemInput, quantity int, opts AddOptions) (State, error) {
	return e.run(ctx, "add_item", func(working *State) (outcome, error) {
		if err := e.validateInput(item, quantity); err != nil {
			return outcome{}, err
		}

		if idx, ok := working.Find(item.ID); ok {
			if item.IsCustomDesign || working.Items[idx].IsCustomDesign {
				return outcome{}, pkgerrors.New(pkgerrors.CodeConflict, "custom design line item already in cart")
			}
			return e.setQuantity(ctx, working, idx, working.Items[idx].Quantity+quantity, opts.SkipValidation)
		}

		if len(working.Items) >= e.cfg.MaxLineItems {
			return outcome{}, validationError(fmt.Sprintf("cart is limited to %d line items", e.cfg.MaxLineItems))
		}
		if !item.IsCustomDesign && !opts.SkipValidation {
			live, err := e.checkAvailability(ctx, item.ID, quantity)
			if err != nil {
				return outcome{}, err
			}
			if !live.Price.Equal(item.Price.Decimal) {
				return outcome{}, inventoryError(item.ID, "price does not match the catalog", map[string]any{
					"submittedPrice": item.Price.Decimal.StringFixed(2),
					"currentPrice":   live.Price.StringFixed(2),
				})
			}
		}

		ts := e.now().UTC()
		line := LineItem{
			ID:             item.ID,
			Title:          strings.TrimSpace(item.Title),
			Price:          item.Price.Decimal,
			Quantity:       quantity,
			IsCustomDesign: item.IsCustomDesign,
			Design:         design.ClonePtr(item.Design),
			CreatedAt:      ts,
			UpdatedAt:      ts,
		}
		if len(item.Metadata) > 0 {
			line.Metadata = make(map[string]string, len(item.Metadata))
			for k, v := range item.Metadata {
				line.Metadata[k] = v
			}
		}
		working.Items = append(working.Items, line)
		added := line.Clone()
		return outcome{
			event:   enums.CartEventItemAdded,
			payload: EventPayload{LineItemID: line.ID, Item: &added},
		}, nil
	})
}

// RemoveItem drops a line item.
func (e *Engine) RemoveItem(ctx context.Context, lineItemID string) (State, error) {
	return e.run(ctx, "remove_item", func(working *State) (outcome, error) {
		idx, ok := working.Find(lineItemID)
		if !ok {
			return outcome{}, notFoundError(lineItemID)
		}
		removed := working.Items[idx].Clone()
		working.Items = append(working.Items[:idx], working.Items[idx+1:]...)
		return outcome{
			event: enums.CartEventItemRemoved,
			payload: EventPayload{
				LineItemID:         lineItemID,
				Item:               &removed,
				RemovedLineItemIDs: []string{lineItemID},
			},
		}, nil
	})
}

// UpdateItemQuantity sets the quantity of an existing line item.
func (e *Engine) UpdateItemQuantity(ctx context.Context, lineItemID string, quantity int) (State, error) {
	return e.run(ctx, "update_quantity", func(working *State) (outcome, error) {
		if err := e.validateQuantity(quantity); err != nil {
			return outcome{}, err
		}
		idx, ok := working.Find(lineItemID)
		if !ok {
			return outcome{}, notFoundError(lineItemID)
		}
		return e.setQuantity(ctx, working, idx, quantity, false)
	})
}

func (e *Engine) setQuantity(ctx context.Context, working *State, idx, quantity int, skipValidation bool) (outcome, error) {
	if err := e.validateQuantity(quantity); err != nil {
		return outcome{}, err
	}
	line := &working.Items[idx]
	if line.Quantity == quantity {
		return outcome{noop: true}, nil
	}
	if !line.IsCustomDesign && !skipValidation {
		if _, err := e.checkAvailability(ctx, line.ID, quantity); err != nil {
			return outcome{}, err
		}
	}
	line.Quantity = quantity
	line.UpdatedAt = e.now().UTC()
	updated := line.Clone()
	return outcome{
		event:   enums.CartEventItemUpdated,
		payload: EventPayload{LineItemID: line.ID, Item: &updated},
	}, nil
}

// ClearCart empties the cart. Clearing an empty cart succeeds without a commit.
func (e *Engine) ClearCart(ctx context.Context) (State, error) {
	return e.run(ctx, "clear_cart", func(working *State) (outcome, error) {
		if len(working.Items) == 0 {
			return outcome{noop: true}, nil
		}
		removed := working.LineItemIDs()
		working.Items = []LineItem{}
		return outcome{
			event:   enums.CartEventCleared,
			payload: EventPayload{RemovedLineItemIDs: removed},
		}, nil
	})
}

// SwapState swaps the committed cart for the one load returns (sign-in,
// sign-out). The outgoing cart is saved first, and the save, load and
// swap happen under one hold of the mutation queue. The undo history
// restarts; nothing is published.
func (e *Engine) SwapState(ctx context.Context, load func(prev State) (State, error)) (State, State, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		snap := e.store.Snapshot()
		return snap, snap, err
	}
	defer e.sem.Release(1)

	prev := e.store.Snapshot()
	if err := e.save(ctx, prev); err != nil {
		e.logg.Warn(e.logg.WithSessionID(ctx, prev.SessionID), "cart flush before swap failed: "+err.Error())
	}
	loaded, err := load(prev.Clone())
	if err != nil {
		return prev, prev, err
	}

	working := loaded.Clone()
	if working.Items == nil {
		working.Items = []LineItem{}
	}
	if working.Version < prev.Version {
		working.Version = prev.Version
	}
	if working.LastUpdated.Before(prev.LastUpdated) {
		working.LastUpdated = prev.LastUpdated
	}
	committed := e.commitLocked(working, working, false)

	e.histMu.Lock()
	e.undo.Reset()
	e.undo.Push(committed)
	e.histMu.Unlock()

	e.persistMu.Lock()
	e.savedVersion = committed.Version
	e.persistMu.Unlock()
	return prev, committed, nil
}

func (e *Engine) validateInput(item ItemInput, quantity int) error {
	if strings.TrimSpace(item.ID) == "" {
		return validationError("line item id is required")
	}
	if strings.TrimSpace(item.Title) == "" {
		return validationError("line item title is required")
	}
	if !item.Price.Valid {
		return validationError("line item price is required")
	}
	if item.Price.Decimal.IsNegative() {
		return validationError("line item price must not be negative")
	}
	if item.Price.Decimal.GreaterThan(e.cfg.MaxItemPrice) {
		return validationError(fmt.Sprintf("line item price exceeds %s", e.cfg.MaxItemPrice.StringFixed(2)))
	}
	return e.validateQuantity(quantity)
}

func (e *Engine) validateQuantity(quantity int) error {
	if quantity < 1 || quantity > e.cfg.MaxQuantityPerItem {
		return validationError(fmt.Sprintf("quantity must be between 1 and %d", e.cfg.MaxQuantityPerItem))
	}
	return nil
}

// checkAvailability returns the live catalog item when quantity can be sold.
func (e *Engine) checkAvailability(ctx context.Context, id string, quantity int) (*inventory.Item, error) {
	item, err := e.oracle.GetItem(ctx, id)
	if err != nil {
		if inventory.IsNotFound(err) {
			return nil, inventoryError(id, "item is not in the catalog", nil)
		}
		return nil, dependencyError(id, err)
	}
	if !item.Purchasable() {
		return nil, inventoryError(id, "item is not available", map[string]any{"status": item.Status.String()})
	}
	if item.QuantityAvailable < quantity {
		return nil, inventoryError(id, "insufficient stock", map[string]any{
			"requested": quantity,
			"available": item.QuantityAvailable,
		})
	}
	return item, nil
}

func (e *Engine) publish(ctx context.Context, sessionID string, eventType enums.CartEventType, payload EventPayload) {
	e.bus.Publish(ctx, events.Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
	})
}

func (e *Engine) publishFailure(ctx context.Context, op string, committed State, err error) {
	payload := EventPayload{Operation: op, State: committed, Error: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		payload.ErrorCode = string(typed.Code())
	}
	e.publish(ctx, committed.SessionID, enums.CartEventError, payload)
}
