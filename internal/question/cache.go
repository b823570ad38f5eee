package question

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type bankLoader func(ctx context.Context) ([]Question, error)

// BankCache holds the full question bank for a bounded time. A zero ttl
// disables caching and every Get goes to the loader.
type BankCache struct {
	mu        sync.RWMutex
	value     []Question
	fetchedAt time.Time
	loaded    bool
	gen       uint64

	ttl    time.Duration
	loader bankLoader
	now    func() time.Time
	group  singleflight.Group
}

func NewBankCache(ttl time.Duration, loader bankLoader) *BankCache {
	return &BankCache{ttl: ttl, loader: loader, now: time.Now}
}

// Get returns the cached bank, refreshing it when stale. Concurrent refreshes
// share one load. The returned slice must not be modified.
func (c *BankCache) Get(ctx context.Context) ([]Question, error) {
	if c.ttl <= 0 {
		return c.loader(ctx)
	}

	c.mu.RLock()
	if c.loaded && c.now().Sub(c.fetchedAt) < c.ttl {
		v := c.value
		c.mu.RUnlock()
		return v, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		items, err := c.loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// An invalidation that raced with this load wins.
		if c.gen == gen {
			c.value = items
			c.fetchedAt = c.now()
			c.loaded = true
		}
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Question), nil
}

// Invalidate drops the cached bank. Called after every admin write.
func (c *BankCache) Invalidate() {
	c.mu.Lock()
	c.value = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()
}
