package tree_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

func annotated(t *testing.T, payload string) *domain.Tree {
	t.Helper()
	return tree.AnnotateParents(mustDecode(t, payload))
}

func TestCompress_Chain(t *testing.T) {
	out := tree.Compress(annotated(t, chainPayload), "/")

	require.Equal(t, 3, out.Len())
	assert.True(t, out.Compressed)

	root := out.RootNode()
	assert.Equal(t, int64(1), root.ID)
	require.Len(t, root.Children, 1)

	merged := &out.Nodes[root.Children[0]]
	assert.Equal(t, int64(3), merged.ID)
	assert.Equal(t, "A/B", merged.Name)
	assert.Equal(t, domain.KindSession, merged.Kind)
	assert.Equal(t, []int64{2}, merged.MergedIDs)
	require.NotNil(t, merged.ParentID)
	assert.Equal(t, int64(1), *merged.ParentID)

	require.Len(t, merged.Children, 1)
	leaf := &out.Nodes[merged.Children[0]]
	assert.Equal(t, int64(4), leaf.ID)
	require.NotNil(t, leaf.ParentID)
	assert.Equal(t, int64(3), *leaf.ParentID)
}

func TestCompress_NoChain(t *testing.T) {
	in := annotated(t, flatPayload)
	out := tree.Compress(in, "/")
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, tree.Leaves(in), tree.Leaves(out))
}

func TestCompress_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantNames []string
	}{
		{
			name: "single container with a result child stays",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "A", "type": "pkg", "children": [{"id": 3, "name": "t", "type": "test"}]}
			]}}`,
			wantNames: []string{"root", "A", "t"},
		},
		{
			name: "root never merges",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "A", "type": "pkg", "children": [
					{"id": 3, "name": "t1", "type": "test"}, {"id": 4, "name": "t2", "type": "test"}
				]}
			]}}`,
			wantNames: []string{"root", "A", "t1", "t2"},
		},
		{
			name: "chain ends at a container with several children",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "A", "type": "pkg", "children": [
					{"id": 3, "name": "B", "type": "pkg", "children": [
						{"id": 4, "name": "C", "type": "session", "children": [
							{"id": 5, "name": "t1", "type": "test"}, {"id": 6, "name": "t2", "type": "test"}
						]}
					]}
				]},
				{"id": 7, "name": "t3", "type": "test"}
			]}}`,
			wantNames: []string{"root", "A|B|C", "t1", "t2", "t3"},
		},
		{
			name: "result nodes with one child never merge",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "t", "type": "test", "children": [
					{"id": 3, "name": "i", "type": "iteration", "children": [{"id": 4, "name": "j", "type": "iteration"}]}
				]}
			]}}`,
			wantNames: []string{"root", "t", "i", "j"},
		},
		{
			name: "container chain ending in an empty container",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "A", "type": "pkg", "children": [{"id": 3, "name": "B", "type": "pkg"}]},
				{"id": 4, "name": "t", "type": "test"}
			]}}`,
			wantNames: []string{"root", "A|B", "t"},
		},
		{
			name: "separate chains in sibling subtrees",
			payload: `{"main_package": {"id": 1, "name": "root", "type": "pkg", "children": [
				{"id": 2, "name": "A", "type": "pkg", "children": [
					{"id": 3, "name": "B", "type": "pkg", "children": [{"id": 4, "name": "t1", "type": "test"}]}
				]},
				{"id": 5, "name": "C", "type": "pkg", "children": [
					{"id": 6, "name": "D", "type": "session", "children": [{"id": 7, "name": "t2", "type": "test"}]}
				]}
			]}}`,
			wantNames: []string{"root", "A|B", "t1", "C|D", "t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tree.Compress(annotated(t, tt.payload), "|")
			var names []string
			tree.Walk(out, func(n *domain.Node, _ int) bool {
				names = append(names, n.Name)
				return true
			})
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestCompress_DefaultSeparator(t *testing.T) {
	out := tree.Compress(annotated(t, chainPayload), "")
	assert.Equal(t, "A/B", out.Nodes[1].Name)
}

func TestCompress_DoesNotMutateInput(t *testing.T) {
	in := annotated(t, chainPayload)
	before := in.Clone()
	_ = tree.Compress(in, "/")
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("Compress mutated its input (-before +after):\n%s", diff)
	}
}

func TestCompress_Empty(t *testing.T) {
	assert.True(t, tree.Compress(domain.EmptyTree(), "/").IsEmpty())
	assert.True(t, tree.Compress(nil, "/").IsEmpty())
}

func TestCompress_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		in := tree.AnnotateParents(randomTree(r, 6))
		out := tree.Compress(in, "/")

		// Leaves and their document order survive.
		assert.Equal(t, tree.Leaves(in), tree.Leaves(out))

		// Node count never grows, and shrinks exactly when a chain existed.
		absorbed := 0
		for _, n := range out.Nodes {
			absorbed += len(n.MergedIDs)
		}
		assert.LessOrEqual(t, out.Len(), in.Len())
		assert.Equal(t, in.Len(), out.Len()+absorbed)

		// Parent links are consistent in the output.
		tree.Walk(out, func(n *domain.Node, _ int) bool {
			for _, c := range n.Children {
				child := out.Nodes[c]
				require.NotNil(t, child.ParentID)
				assert.Equal(t, n.ID, *child.ParentID)
			}
			return true
		})

		// Compressing twice changes nothing.
		if diff := cmp.Diff(out, tree.Compress(out, "/")); diff != "" {
			t.Fatalf("Compress is not idempotent (-once +twice):\n%s", diff)
		}
	}
}
