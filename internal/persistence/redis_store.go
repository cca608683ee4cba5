package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/pkg/redis"
)

type kvStore interface {
	GetEx(ctx context.Context, key string, ttl time.Duration) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(scopeKind, scopeID string) string
}

// RedisStore keeps carts as JSON under cc:cart:<kind>:<id>. The TTL slides:
// every save and every load pushes the expiry out again.
type RedisStore struct {
	kv  kvStore
	ttl time.Duration
}

func NewRedisStore(kv kvStore, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, scope cart.Scope) (*cart.State, error) {
	raw, err := s.kv.GetEx(ctx, s.key(scope), s.ttl)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", scope, err)
	}
	var state cart.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", scope, err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, scope cart.Scope, state cart.State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", scope, err)
	}
	return s.kv.Set(ctx, s.key(scope), string(body), s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context, scope cart.Scope) error {
	return s.kv.Del(ctx, s.key(scope))
}

func (s *RedisStore) key(scope cart.Scope) string {
	return s.kv.CartKey(scope.Kind.String(), scope.ID)
}
