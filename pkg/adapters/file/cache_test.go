package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/adapters/file"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

var _ ports.ListableCache = (*file.Cache)(nil)

func TestCache_Contract(t *testing.T) {
	ports.RunTreeCacheContract(t, file.NewCache(t.TempDir(), 0))
}

func TestCache_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache := file.NewCache(dir, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Set(ctx, 9, ports.ContractTree()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "9.json", entries[0].Name())
}

func TestCache_BuiltTreeRoundTrip(t *testing.T) {
	built, err := tree.Build(context.Background(), []byte(`{
		"main_package": {"id": 1, "name": "ts", "type": "pkg", "test_id": 9007199254740993}
	}`))
	require.NoError(t, err)

	cache := file.NewCache(t.TempDir(), 0)
	require.NoError(t, cache.Set(context.Background(), 5, built))

	got, err := cache.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, built.Nodes[0].Attributes, got.Nodes[0].Attributes)
	assert.Equal(t, json.Number("9007199254740993"), got.Nodes[0].Attributes["testId"])
}

func TestCache_OverwriteNeverMisses(t *testing.T) {
	cache := file.NewCache(t.TempDir(), 0)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, 9, ports.ContractTree()))

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 200; i++ {
			if err := cache.Set(ctx, 9, ports.ContractTree()); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}
		_, err := cache.Get(ctx, 9)
		require.NoError(t, err, "readers must see the old or the new entry during an overwrite")
	}
}

func TestCache_TTL(t *testing.T) {
	dir := t.TempDir()
	cache := file.NewCache(dir, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 3, ports.ContractTree()))
	_, err := cache.Get(ctx, 3)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "3.json"), old, old))

	runs, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = cache.Get(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	_, err = os.Stat(filepath.Join(dir, "3.json"))
	assert.True(t, os.IsNotExist(err), "expired file should be removed on read")
}

func TestCache_ListMissingDir(t *testing.T) {
	cache := file.NewCache(filepath.Join(t.TempDir(), "absent"), 0)
	runs, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
