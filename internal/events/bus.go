// Package events delivers cart domain events to in-process subscribers.
package events

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/google/uuid"
)

// Event is one published outcome.
type Event struct {
	ID         string
	Type       enums.CartEventType
	SessionID  string
	OccurredAt time.Time
	Payload    any
}

// Handler receives events synchronously on the publishing goroutine.
type Handler func(ctx context.Context, evt Event)

// Publisher is the send side of a Bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Bus fans events out to subscribers in subscription order. Each cart engine
// owns its own Bus.
type Bus struct {
	logg *logger.Logger

	mu     sync.RWMutex
	nextID int
	typed  map[enums.CartEventType]map[int]Handler
	all    map[int]Handler
}

func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		logg:  logg,
		typed: map[enums.CartEventType]map[int]Handler{},
		all:   map[int]Handler{},
	}
}

// Subscribe registers h for one event type. The returned func unsubscribes.
func (b *Bus) Subscribe(eventType enums.CartEventType, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.typed[eventType] == nil {
		b.typed[eventType] = map[int]Handler{}
	}
	b.typed[eventType][id] = h
	return b.unsubscriber(func() { delete(b.typed[eventType], id) })
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all[id] = h
	return b.unsubscriber(func() { delete(b.all, id) })
}

func (b *Bus) unsubscriber(remove func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			remove()
		})
	}
}

// Publish stamps evt and delivers it. A panicking handler is logged and
// does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, h := range b.handlersFor(evt.Type) {
		b.deliver(ctx, h, evt)
	}
}

func (b *Bus) handlersFor(eventType enums.CartEventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int, 0, len(b.typed[eventType])+len(b.all))
	byID := make(map[int]Handler, cap(ids))
	for id, h := range b.typed[eventType] {
		ids = append(ids, id)
		byID[id] = h
	}
	for id, h := range b.all {
		ids = append(ids, id)
		byID[id] = h
	}
	sort.Ints(ids)
	out := make([]Handler, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}

func (b *Bus) deliver(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil && b.logg != nil {
			b.logg.Error(ctx, "event handler panicked", fmt.Errorf("%s: %v", evt.Type, r))
		}
	}()
	h(ctx, evt)
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.all)
	for _, hs := range b.typed {
		n += len(hs)
	}
	return n
}
