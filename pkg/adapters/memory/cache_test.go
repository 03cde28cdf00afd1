package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/adapters/memory"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
)

func TestMemoryCache_Contract(t *testing.T) {
	cache, err := memory.NewCache(16)
	require.NoError(t, err)
	ports.RunTreeCacheContract(t, cache)
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	cache, err := memory.NewCache(2)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, 1, ports.ContractTree()))
	require.NoError(t, cache.Set(ctx, 2, ports.ContractTree()))
	_, err = cache.Get(ctx, 1) // 1 becomes most recently used
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, 3, ports.ContractTree()))

	_, err = cache.Get(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	runs, err := cache.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, runs)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache, err := memory.NewCache(8,
		memory.WithTTL(time.Minute),
		memory.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, 1, ports.ContractTree()))
	_, err = cache.Get(ctx, 1)
	require.NoError(t, err)

	now = now.Add(time.Minute)

	runs, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = cache.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, cache.Len())
}
