package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mu     sync.Mutex
	saved  map[Scope]State
	saves  []int64
	failOn error
}

func newStubGateway() *stubGateway {
	return &stubGateway{saved: map[Scope]State{}}
}

func (g *stubGateway) Load(_ context.Context, scope Scope) (*State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.saved[scope]
	if !ok {
		return nil, nil
	}
	out := s.Clone()
	return &out, nil
}

func (g *stubGateway) Save(_ context.Context, scope Scope, state State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOn != nil {
		return g.failOn
	}
	g.saved[scope] = state.Clone()
	g.saves = append(g.saves, state.Version)
	return nil
}

func (g *stubGateway) Clear(_ context.Context, scope Scope) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.saved, scope)
	return nil
}

func (g *stubGateway) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failOn = err
}

func (g *stubGateway) savedState(scope Scope) (State, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.saved[scope]
	return s, ok
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []enums.CartEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]enums.CartEventType, len(r.events))
	for i, evt := range r.events {
		out[i] = evt.Type
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) last(eventType enums.CartEventType) (EventPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i].Payload.(EventPayload), true
		}
	}
	return EventPayload{}, false
}

type harness struct {
	engine  *Engine
	oracle  *inventory.MemoryOracle
	gateway *stubGateway
	events  *recorder
}

func testConfig() Config {
	return Config{
		MaxItemPrice:       decimal.NewFromInt(10000),
		MaxQuantityPerItem: 10,
		MaxLineItems:       5,
		UndoDepth:          20,
		DesignBaseFee:      decimal.NewFromInt(5),
		SaveTimeout:        time.Second,
		Pricing: Pricing{
			TaxRate:               decimal.RequireFromString("0.08"),
			FreeShippingThreshold: decimal.NewFromInt(75),
			ShippingFee:           decimal.RequireFromString("12.99"),
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
}

func activeItem(id, price string, stock int) inventory.Item {
	return inventory.Item{
		ID:                id,
		Title:             "Item " + id,
		Price:             decimal.RequireFromString(price),
		Status:            enums.CatalogItemStatusActive,
		QuantityAvailable: stock,
	}
}

func newHarness(t *testing.T, items ...inventory.Item) *harness {
	t.Helper()
	oracle := inventory.NewMemoryOracle(items...)
	gw := newStubGateway()
	engine, err := NewEngine(Params{
		Config:  testConfig(),
		Oracle:  oracle,
		Gateway: gw,
		Logger:  testLogger(),
		Initial: NewState("sess-1", nil),
	})
	require.NoError(t, err)
	rec := &recorder{}
	engine.Bus().SubscribeAll(rec.handle)
	return &harness{engine: engine, oracle: oracle, gateway: gw, events: rec}
}

func catalogInput(id, price string) ItemInput {
	return ItemInput{
		ID:    id,
		Title: "Item " + id,
		Price: decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

// gatedOracle parks the next lookup after arm until release is called.
type gatedOracle struct {
	inventory.Oracle
	mu      sync.Mutex
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedOracle) arm() (<-chan struct{}, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = make(chan struct{})
	g.gate = make(chan struct{})
	gate := g.gate
	return g.entered, func() { close(gate) }
}

func (g *gatedOracle) GetItem(ctx context.Context, id string) (*inventory.Item, error) {
	g.mu.Lock()
	entered, gate := g.entered, g.gate
	g.entered, g.gate = nil, nil
	g.mu.Unlock()
	if entered != nil {
		close(entered)
		<-gate
	}
	return g.Oracle.GetItem(ctx, id)
}

var errStorageDown = errors.New("storage down")

// stripVolatile zeroes the fields that change on every commit.
func stripVolatile(s State) State {
	s = s.Clone()
	s.Version = 0
	s.LastUpdated = time.Time{}
	for i := range s.Items {
		s.Items[i].CreatedAt = time.Time{}
		s.Items[i].UpdatedAt = time.Time{}
	}
	return s
}

func testNow() time.Time {
	return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
}

// assertSameCart compares carts by value, ignoring commit stamps.
func assertSameCart(t *testing.T, want, got State) {
	t.Helper()
	a, err := json.Marshal(stripVolatile(want))
	require.NoError(t, err)
	b, err := json.Marshal(stripVolatile(got))
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
}
