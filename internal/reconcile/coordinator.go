// Package reconcile keeps design history and cart line items in step.
package reconcile

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultDesignTitle = "Custom necklace"

type cartEngine interface {
	AddItem(ctx context.Context, item cart.ItemInput, quantity int, opts cart.AddOptions) (cart.State, error)
	Snapshot() cart.State
}

// ExportMetadata customizes the line item created for an exported design.
type ExportMetadata struct {
	Title    string
	Quantity int
	Metadata map[string]string
}

// Params wires a Coordinator.
type Params struct {
	Engine        cartEngine
	History       *design.HistoryStack
	Oracle        inventory.Oracle
	DesignBaseFee decimal.Decimal
	Logger        *logger.Logger
}

// Coordinator turns design snapshots into cart lines and clears the
// exported marker when those lines leave the cart.
type Coordinator struct {
	engine  cartEngine
	history *design.HistoryStack
	oracle  inventory.Oracle
	baseFee decimal.Decimal
	logg    *logger.Logger

	mu    sync.Mutex
	unsub []func()
}

func NewCoordinator(p Params) (*Coordinator, error) {
	if p.Engine == nil {
		return nil, errors.New("cart engine required")
	}
	if p.History == nil {
		return nil, errors.New("design history required")
	}
	if p.Oracle == nil {
		return nil, errors.New("inventory oracle required")
	}
	if p.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Coordinator{
		engine:  p.Engine,
		history: p.History,
		oracle:  p.Oracle,
		baseFee: p.DesignBaseFee,
		logg:    p.Logger,
	}, nil
}

// ExportToCart prices snap, adds it to the cart as a custom design line and
// marks the snapshot exported.
func (c *Coordinator) ExportToCart(ctx context.Context, snap design.Snapshot, meta ExportMetadata) (cart.LineItem, cart.State, error) {
	if err := snap.Design.Validate(); err != nil {
		return cart.LineItem{}, c.engine.Snapshot(), err
	}
	quantity := meta.Quantity
	if quantity == 0 {
		quantity = 1
	}
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = defaultDesignTitle
	}

	quote := inventory.QuoteDesign(ctx, c.oracle, snap.Design.ComponentIDs(), c.baseFee)
	if len(quote.Unresolved) > 0 {
		c.logg.Warn(c.logg.WithField(ctx, "unresolved_components", quote.Unresolved),
			"design export priced without unresolved components")
	}

	lineID := cart.DesignIDPrefix + uuid.NewString()
	embedded := snap.Clone()
	embedded.ExportedLineItemID = lineID

	metadata := map[string]string{
		"snapshotId": snap.ID,
		"necklaceId": snap.Design.NecklaceID,
		"charmCount": strconv.Itoa(len(snap.Design.Charms)),
	}
	for k, v := range meta.Metadata {
		metadata[k] = v
	}

	state, err := c.engine.AddItem(ctx, cart.ItemInput{
		ID:             lineID,
		Title:          title,
		Price:          decimal.NewNullDecimal(quote.Price),
		IsCustomDesign: true,
		Design:         &embedded,
		Metadata:       metadata,
	}, quantity, cart.AddOptions{SkipValidation: true})
	if err != nil {
		return cart.LineItem{}, state, err
	}

	if err := c.history.MarkExportedSnapshot(snap.ID, lineID); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return cart.LineItem{}, state, err
		}
		c.logg.Warn(c.logg.WithLineItemID(ctx, lineID), "exported snapshot is no longer in design history")
	}

	idx, _ := state.Find(lineID)
	return state.Items[idx].Clone(), state, nil
}

// OnLineItemRemoved clears exported markers pointing at lineItemID.
func (c *Coordinator) OnLineItemRemoved(ctx context.Context, lineItemID string) int {
	if !strings.HasPrefix(lineItemID, cart.DesignIDPrefix) {
		return 0
	}
	cleared := c.history.ClearExported(lineItemID)
	if cleared > 0 {
		c.logg.Debug(c.logg.WithLineItemID(ctx, lineItemID), "cleared exported design markers")
	}
	return cleared
}

// Resync aligns history with state: markers for lines no longer in the cart
// are cleared and lines embedding a snapshot still in history re-mark it.
func (c *Coordinator) Resync(ctx context.Context, state cart.State) int {
	present := make(map[string]struct{}, len(state.Items))
	for _, item := range state.Items {
		present[item.ID] = struct{}{}
		if item.IsCustomDesign && item.Design != nil {
			_ = c.history.MarkExportedSnapshot(item.Design.ID, item.ID)
		}
	}
	changed := 0
	for _, id := range c.history.ExportedLineItemIDs() {
		if _, ok := present[id]; !ok {
			changed += c.OnLineItemRemoved(ctx, id)
		}
	}
	return changed
}

// Attach subscribes the coordinator to the engine's bus.
func (c *Coordinator) Attach(bus *events.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byRemoved := func(ctx context.Context, evt events.Event) {
		payload, ok := evt.Payload.(cart.EventPayload)
		if !ok {
			return
		}
		for _, id := range payload.RemovedLineItemIDs {
			c.OnLineItemRemoved(ctx, id)
		}
	}
	byState := func(ctx context.Context, evt events.Event) {
		payload, ok := evt.Payload.(cart.EventPayload)
		if !ok {
			return
		}
		c.Resync(ctx, payload.State)
	}
	c.unsub = append(c.unsub,
		bus.Subscribe(enums.CartEventItemRemoved, byRemoved),
		bus.Subscribe(enums.CartEventCleared, byRemoved),
		bus.Subscribe(enums.CartEventUndone, byState),
		bus.Subscribe(enums.CartEventRedone, byState),
		bus.Subscribe(enums.CartEventUserLoggedIn, byState),
		bus.Subscribe(enums.CartEventUserLoggedOut, byState),
	)
}

// Detach drops every subscription made by Attach.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.unsub {
		u()
	}
	c.unsub = nil
}
