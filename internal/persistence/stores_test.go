package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/pkg/db/models"
	"github.com/angelmondragon/charmcart-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) GetEx(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.ErrNil
	}
	f.ttls[key] = ttl
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) CartKey(kind, id string) string {
	return "cc:cart:" + kind + ":" + id
}

func sampleState(sessionID string, identity *string, at time.Time) cart.State {
	s := cart.NewState(sessionID, identity)
	s.Items = []cart.LineItem{{
		ID:       "charm-star",
		Title:    "Star",
		Price:    decimal.RequireFromString("4.50"),
		Quantity: 2,
	}}
	s.LastUpdated = at
	s.Version = 3
	return cart.Recompute(s, cart.Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.NewFromInt(75),
		ShippingFee:           decimal.RequireFromString("12.99"),
	})
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, err := NewRedisStore(kv, 48*time.Hour)
	require.NoError(t, err)
	scope := cart.GuestScope("sess-1")

	loaded, err := store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	state := sampleState("sess-1", nil, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, scope, state))
	assert.Equal(t, 48*time.Hour, kv.ttls["cc:cart:guest:sess-1"])

	kv.ttls["cc:cart:guest:sess-1"] = time.Minute
	loaded, err = store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, kv.ttls["cc:cart:guest:sess-1"], "load slides the expiry")
	require.NotNil(t, loaded)
	assert.Equal(t, "sess-1", loaded.SessionID)
	assert.True(t, loaded.Total.Equal(state.Total))
	assert.Equal(t, state.Version, loaded.Version)

	require.NoError(t, store.Clear(ctx, scope))
	loaded, err = store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStoreErrors(t *testing.T) {
	_, err := NewRedisStore(nil, time.Hour)
	require.Error(t, err)

	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	kv.data["cc:cart:guest:bad"] = "{not json"
	_, err = store.Load(context.Background(), cart.GuestScope("bad"))
	require.Error(t, err)

	kv.err = errors.New("connection refused")
	_, err = store.Load(context.Background(), cart.GuestScope("x"))
	require.ErrorIs(t, err, kv.err)
}

func setupSnapshotDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:snapshots_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CartSnapshot{}))
	return db
}

func TestDurableStoreUpsertKeepsNewest(t *testing.T) {
	ctx := context.Background()
	store := NewDurableStore(setupSnapshotDB(t))
	identity := "user-1"
	scope := cart.IdentityScope(identity)

	loaded, err := store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	newer := sampleState("sess-2", &identity, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	newer.Items[0].Quantity = 5
	require.NoError(t, store.Save(ctx, scope, newer))

	older := sampleState("sess-1", &identity, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, scope, older))

	loaded, err = store.Load(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "sess-2", loaded.SessionID)
	assert.Equal(t, 5, loaded.Items[0].Quantity)

	newest := sampleState("sess-3", &identity, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, scope, newest))
	loaded, err = store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "sess-3", loaded.SessionID)

	require.NoError(t, store.Clear(ctx, scope))
	loaded, err = store.Load(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	scope := cart.GuestScope("s")

	state := sampleState("s", nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, scope, state))
	stale := sampleState("s", nil, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	stale.Items = nil
	require.NoError(t, store.Save(ctx, scope, stale))

	loaded, err := store.Load(ctx, scope)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	loaded.Items[0].Quantity = 99

	again, _ := store.Load(ctx, scope)
	assert.Equal(t, 2, again.Items[0].Quantity)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Clear(ctx, scope))
	assert.Equal(t, 0, store.Len())
}

func TestRouterSelectsBackend(t *testing.T) {
	ctx := context.Background()
	guest := NewMemoryStore()
	identity := NewMemoryStore()
	router, err := NewRouter(guest, identity)
	require.NoError(t, err)

	id := "user-9"
	require.NoError(t, router.Save(ctx, cart.GuestScope("s"), sampleState("s", nil, time.Now())))
	require.NoError(t, router.Save(ctx, cart.IdentityScope(id), sampleState("s", &id, time.Now())))
	assert.Equal(t, 1, guest.Len())
	assert.Equal(t, 1, identity.Len())

	loaded, err := router.Load(ctx, cart.IdentityScope(id))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, id, *loaded.IdentityID)

	require.NoError(t, router.Clear(ctx, cart.GuestScope("s")))
	assert.Equal(t, 0, guest.Len())

	_, err = router.Load(ctx, cart.Scope{Kind: "team", ID: "x"})
	require.Error(t, err)
	err = router.Save(ctx, cart.GuestScope(""), cart.State{})
	require.Error(t, err)

	_, err = NewRouter(nil, identity)
	require.Error(t, err)
}
