package tree_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// chainPayload is root(1) -> A(2) -> B(3) -> C(4, test).
const chainPayload = `{
	"main_package": {
		"id": 1, "name": "root", "type": "pkg",
		"children": [{
			"id": 2, "name": "A", "type": "pkg",
			"children": [{
				"id": 3, "name": "B", "type": "session",
				"children": [{"id": 4, "name": "C", "type": "test"}]
			}]
		}]
	}
}`

// flatPayload is root(1) with two test leaves X(2) and Y(3).
const flatPayload = `{
	"main_package": {
		"id": 1, "name": "root", "type": "pkg",
		"children": [
			{"id": 2, "name": "X", "type": "test"},
			{"id": 3, "name": "Y", "type": "test"}
		]
	}
}`

func mustBuild(t *testing.T, payload string, opts ...tree.BuildOption) *domain.Tree {
	t.Helper()
	out, err := tree.Build(context.Background(), []byte(payload), opts...)
	require.NoError(t, err)
	return out
}

func mustDecode(t *testing.T, payload string) *domain.RawNode {
	t.Helper()
	doc, err := tree.Parse([]byte(payload))
	require.NoError(t, err)
	root, issues, err := tree.Decode(tree.NormalizeKeys(doc))
	require.NoError(t, err)
	require.Empty(t, issues)
	return root
}

func nodeByID(t *testing.T, tr *domain.Tree, id int64) *domain.Node {
	t.Helper()
	for i := range tr.Nodes {
		if tr.Nodes[i].ID == id {
			return &tr.Nodes[i]
		}
	}
	t.Fatalf("node %d not found", id)
	return nil
}

// randomTree generates a raw tree with unique identifiers. Containers get
// zero to three children; tests occasionally carry iterations.
func randomTree(r *rand.Rand, maxDepth int) *domain.RawNode {
	next := int64(0)
	var gen func(depth int, kind domain.Kind) *domain.RawNode
	gen = func(depth int, kind domain.Kind) *domain.RawNode {
		next++
		n := &domain.RawNode{ID: next * 10, Name: string(rune('a' + next%26)), Kind: kind}
		switch {
		case kind == domain.KindTest && r.Intn(4) == 0:
			for i := 0; i < 1+r.Intn(2); i++ {
				n.Children = append(n.Children, gen(depth+1, domain.KindIteration))
			}
		case kind.IsContainer() && depth < maxDepth:
			for i := 0; i < r.Intn(4); i++ {
				childKind := domain.KindTest
				switch r.Intn(3) {
				case 0:
					childKind = domain.KindPackage
				case 1:
					childKind = domain.KindSession
				}
				n.Children = append(n.Children, gen(depth+1, childKind))
			}
		}
		return n
	}
	return gen(0, domain.KindPackage)
}

// rawParents maps every raw node id to the id of the node listing it as a child.
func rawParents(root *domain.RawNode) map[int64]int64 {
	out := make(map[int64]int64)
	stack := []*domain.RawNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range n.Children {
			out[c.ID] = n.ID
			stack = append(stack, c)
		}
	}
	return out
}
