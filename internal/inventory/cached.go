package inventory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	item    Item
	expires time.Time
}

// CachedOracle memoizes successful lookups for a short TTL and collapses
// concurrent lookups of the same id into one call.
type CachedOracle struct {
	next  Oracle
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCachedOracle(next Oracle, ttl time.Duration) *CachedOracle {
	return &CachedOracle{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func (c *CachedOracle) GetItem(ctx context.Context, id string) (*Item, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.entries[id]
		c.mu.Unlock()
		if ok && c.now().Before(entry.expires) {
			item := entry.item
			return &item, nil
		}
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		item, err := c.next.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[id] = cacheEntry{item: *item, expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		}
		return *item, nil
	})
	if err != nil {
		return nil, err
	}
	item := v.(Item)
	return &item, nil
}

// Invalidate drops a cached item, or every item when id is empty.
func (c *CachedOracle) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.entries = map[string]cacheEntry{}
		return
	}
	delete(c.entries, id)
}
