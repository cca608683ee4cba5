package events

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(testLogger())
	var seen []string

	bus.SubscribeAll(func(_ context.Context, evt Event) { seen = append(seen, "all:"+evt.Type.String()) })
	bus.Subscribe(enums.CartEventItemAdded, func(_ context.Context, evt Event) { seen = append(seen, "added") })
	bus.Subscribe(enums.CartEventCleared, func(_ context.Context, evt Event) { seen = append(seen, "cleared") })

	bus.Publish(context.Background(), Event{Type: enums.CartEventItemAdded, SessionID: "s1"})
	assert.Equal(t, []string{"all:cart.item_added", "added"}, seen)
}

func TestBusStampsEvents(t *testing.T) {
	bus := NewBus(testLogger())
	var got Event
	bus.SubscribeAll(func(_ context.Context, evt Event) { got = evt })
	bus.Publish(context.Background(), Event{Type: enums.CartEventUpdated})
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	calls := 0
	unsub := bus.Subscribe(enums.CartEventUpdated, func(context.Context, Event) { calls++ })
	require.Equal(t, 1, bus.Len())

	bus.Publish(context.Background(), Event{Type: enums.CartEventUpdated})
	unsub()
	unsub()
	bus.Publish(context.Background(), Event{Type: enums.CartEventUpdated})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}

func TestBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewBus(testLogger())
	delivered := false
	bus.SubscribeAll(func(context.Context, Event) { panic("boom") })
	bus.SubscribeAll(func(context.Context, Event) { delivered = true })

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Type: enums.CartEventError})
	})
	assert.True(t, delivered)
}
