package tree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

func TestAnnotatePaths(t *testing.T) {
	tr := tree.AnnotatePaths(tree.Compress(annotated(t, chainPayload), "/"))

	assert.Equal(t, []int64{1}, nodeByID(t, tr, 1).Path)
	assert.Equal(t, []int64{1, 3}, nodeByID(t, tr, 3).Path)
	assert.Equal(t, []int64{1, 3, 4}, nodeByID(t, tr, 4).Path)
}

func TestAnnotatePaths_Flat(t *testing.T) {
	tr := tree.AnnotatePaths(annotated(t, flatPayload))

	assert.Equal(t, []int64{1, 2}, nodeByID(t, tr, 2).Path)
	assert.Equal(t, []int64{1, 3}, nodeByID(t, tr, 3).Path)
}

func TestAnnotatePaths_IndependentSlices(t *testing.T) {
	tr := tree.AnnotatePaths(annotated(t, flatPayload))

	x := nodeByID(t, tr, 2)
	x.Path[0] = 99

	assert.Equal(t, []int64{1}, nodeByID(t, tr, 1).Path)
	assert.Equal(t, []int64{1, 3}, nodeByID(t, tr, 3).Path)
}

func TestAnnotatePaths_DoesNotMutateInput(t *testing.T) {
	in := annotated(t, chainPayload)
	_ = tree.AnnotatePaths(in)
	for _, n := range in.Nodes {
		assert.Empty(t, n.Path)
	}
}

func TestAnnotatePaths_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		tr := tree.AnnotatePaths(tree.Compress(tree.AnnotateParents(randomTree(r, 6)), "/"))

		tree.Walk(tr, func(n *domain.Node, depth int) bool {
			require.Len(t, n.Path, depth+1)
			assert.Equal(t, tr.RootNode().ID, n.Path[0])
			assert.Equal(t, n.ID, n.Path[len(n.Path)-1])
			if n.Parent != domain.NoNode {
				parent := tr.Nodes[n.Parent]
				assert.Equal(t, append(append([]int64{}, parent.Path...), n.ID), n.Path)
			}
			return true
		})
	}
}
