package memory

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// DefaultSize bounds the number of cached runs.
const DefaultSize = 256

type entry struct {
	tree    *domain.Tree
	expires time.Time
}

// Cache implements ports.TreeCache with a bounded LRU.
// Safe for concurrent use.
type Cache struct {
	lru *lru.Cache[int64, entry]
	ttl time.Duration
	now func() time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithTTL expires entries after ttl. Zero keeps entries until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache holding at most size runs.
func NewCache(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	backend, err := lru.New[int64, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	c := &Cache{lru: backend, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns a copy of the cached tree so callers can't mutate the entry.
func (c *Cache) Get(ctx context.Context, runID int64) (*domain.Tree, error) {
	e, ok := c.lru.Get(runID)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if c.expired(e) {
		c.lru.Remove(runID)
		return nil, domain.ErrCacheMiss
	}
	return e.tree.Clone(), nil
}

// Set stores a copy of the tree.
func (c *Cache) Set(ctx context.Context, runID int64, tree *domain.Tree) error {
	e := entry{tree: tree.Clone()}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.lru.Add(runID, e)
	return nil
}

// Delete removes the entry.
func (c *Cache) Delete(ctx context.Context, runID int64) error {
	c.lru.Remove(runID)
	return nil
}

// List returns cached runs from least to most recently used.
func (c *Cache) List(ctx context.Context) ([]int64, error) {
	keys := c.lru.Keys()
	runs := make([]int64, 0, len(keys))
	for _, k := range keys {
		if e, ok := c.lru.Peek(k); ok && !c.expired(e) {
			runs = append(runs, k)
		}
	}
	return runs, nil
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) expired(e entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}
