package tree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

func TestAnnotateParents(t *testing.T) {
	root := mustDecode(t, chainPayload)
	tr := tree.AnnotateParents(root)

	require.Equal(t, 4, tr.Len())
	assert.Equal(t, 0, tr.Root)
	assert.Nil(t, tr.RootNode().ParentID)
	assert.Equal(t, domain.NoNode, tr.RootNode().Parent)

	for _, id := range []int64{2, 3, 4} {
		n := nodeByID(t, tr, id)
		require.NotNil(t, n.ParentID)
		assert.Equal(t, id-1, *n.ParentID)
		assert.Equal(t, id-1, tr.Nodes[n.Parent].ID)
	}
}

func TestAnnotateParents_Nil(t *testing.T) {
	tr := tree.AnnotateParents(nil)
	assert.True(t, tr.IsEmpty())
	assert.Equal(t, 0, tr.Len())
}

func TestAnnotateParents_DepthFirstLayout(t *testing.T) {
	root := &domain.RawNode{ID: 1, Kind: domain.KindPackage, Children: []*domain.RawNode{
		{ID: 2, Kind: domain.KindSession, Children: []*domain.RawNode{
			{ID: 3, Kind: domain.KindTest},
		}},
		{ID: 4, Kind: domain.KindTest},
	}}
	tr := tree.AnnotateParents(root)

	var ids []int64
	for _, n := range tr.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	assert.Equal(t, []int{1, 3}, tr.Nodes[0].Children)
}

func TestAnnotateParents_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		root := randomTree(r, 5)
		tr := tree.AnnotateParents(root)
		parents := rawParents(root)

		require.Equal(t, len(parents)+1, tr.Len())
		tree.Walk(tr, func(n *domain.Node, _ int) bool {
			if n.ID == root.ID {
				assert.Nil(t, n.ParentID)
				return true
			}
			require.NotNil(t, n.ParentID)
			assert.Equal(t, parents[n.ID], *n.ParentID, "parent of %d", n.ID)
			return true
		})

		// Child order matches the raw tree.
		stack := []*domain.RawNode{root}
		for len(stack) > 0 {
			raw := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := nodeByID(t, tr, raw.ID)
			require.Len(t, n.Children, len(raw.Children))
			for j, c := range raw.Children {
				assert.Equal(t, c.ID, tr.Nodes[n.Children[j]].ID)
				stack = append(stack, c)
			}
		}
	}
}
