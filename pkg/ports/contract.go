package ports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// ContractTree returns a small annotated tree: root(1) -> session(3, merged
// from 2) -> test(4). The test carries an identifier attribute above 2^53 as
// built trees do.
func ContractTree() *domain.Tree {
	root, merged := int64(1), int64(3)
	return &domain.Tree{
		Root:       0,
		Compressed: true,
		Nodes: []domain.Node{
			{ID: 1, Name: "root", Kind: domain.KindPackage, Path: []int64{1}, Parent: domain.NoNode, Children: []int{1}},
			{ID: 3, Name: "A/B", Kind: domain.KindSession, ParentID: &root, Path: []int64{1, 3}, MergedIDs: []int64{2}, Parent: 0, Children: []int{2}},
			{ID: 4, Name: "C", Kind: domain.KindTest, ParentID: &merged, Path: []int64{1, 3, 4}, HasError: true, Parent: 1,
				Attributes: map[string]any{
					"testId": json.Number("9007199254740993"),
					"result": "FAILED",
				}},
		},
	}
}

// RunTreeCacheContract runs a suite of tests to verify that a TreeCache
// implementation adheres to the defined interface contract.
func RunTreeCacheContract(t *testing.T, cache TreeCache) {
	ctx := context.Background()
	const runID = int64(4242)

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, runID+1)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Set and Get", func(t *testing.T) {
		want := ContractTree()
		require.NoError(t, cache.Set(ctx, runID, want))

		got, err := cache.Get(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, json.Number("9007199254740993"), got.Nodes[2].Attributes["testId"])
	})

	t.Run("Returned Tree Is Isolated", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, runID, ContractTree()))

		got, err := cache.Get(ctx, runID)
		require.NoError(t, err)
		got.Nodes[0].Name = "changed"
		got.Nodes[2].Path[0] = 99

		again, err := cache.Get(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "root", again.Nodes[0].Name)
		assert.Equal(t, []int64{1, 3, 4}, again.Nodes[2].Path)
	})

	t.Run("Overwrite", func(t *testing.T) {
		tree := ContractTree()
		tree.Nodes[0].Name = "rebuilt"
		require.NoError(t, cache.Set(ctx, runID, tree))

		got, err := cache.Get(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "rebuilt", got.Nodes[0].Name)
	})

	t.Run("Empty Tree", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, runID+2, domain.EmptyTree()))

		got, err := cache.Get(ctx, runID+2)
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, runID, ContractTree()))
		require.NoError(t, cache.Delete(ctx, runID))

		_, err := cache.Get(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, runID), "Deleting a missing entry should succeed")
	})

	if lc, ok := cache.(ListableCache); ok {
		t.Run("List", func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, runID+3, ContractTree()))

			runs, err := lc.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, runs, runID+3)
			assert.NotContains(t, runs, runID)
		})
	}
}
