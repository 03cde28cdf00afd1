package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// DefaultPrefix namespaces all keys written by the cache.
const DefaultPrefix = "logtree:tree:"

// farFuture scores index members of entries without TTL (2100-01-01).
const farFuture = 4102444800

// Cache implements ports.TreeCache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Cache)

// WithTTL sets the expiration for cached trees.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached trees.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithClock overrides the time source used for index scores.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *Cache) key(runID int64) string {
	return c.prefix + strconv.FormatInt(runID, 10)
}

func (c *Cache) indexKey() string {
	return c.prefix + "index"
}

// Set stores the tree as JSON and records the run in the index.
func (c *Cache) Set(ctx context.Context, runID int64, tree *domain.Tree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	score := float64(c.now().Add(c.ttl).Unix())
	if c.ttl == 0 {
		score = farFuture
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.key(runID), data, c.ttl)
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{
		Score:  score,
		Member: strconv.FormatInt(runID, 10),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves the tree from Redis.
func (c *Cache) Get(ctx context.Context, runID int64) (*domain.Tree, error) {
	val, err := c.client.Get(ctx, c.key(runID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	tree, err := domain.DecodeTree(val)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return tree, nil
}

// Delete removes the tree and its index entry.
func (c *Cache) Delete(ctx context.Context, runID int64) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(runID))
	pipe.ZRem(ctx, c.indexKey(), strconv.FormatInt(runID, 10))
	_, err := pipe.Exec(ctx)
	return err
}

// List returns cached runs, pruning expired index entries first.
func (c *Cache) List(ctx context.Context) ([]int64, error) {
	now := float64(c.now().Unix())
	err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", fmt.Sprintf("(%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired trees: %w", err)
	}

	members, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	runs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		runs = append(runs, id)
	}
	return runs, nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
