package tree

import (
	"fmt"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's subtree.
func Walk(t *domain.Tree, fn func(n *domain.Node, depth int) bool) {
	if t.IsEmpty() {
		return
	}
	type frame struct{ idx, depth int }
	stack := []frame{{idx: t.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.Nodes[f.idx]
		if !fn(n, f.depth) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: n.Children[i], depth: f.depth + 1})
		}
	}
}

// Count returns the number of nodes reachable from the root.
func Count(t *domain.Tree) int {
	count := 0
	Walk(t, func(*domain.Node, int) bool {
		count++
		return true
	})
	return count
}

// Leaves returns the identifiers of childless nodes in document order.
func Leaves(t *domain.Tree) []int64 {
	var ids []int64
	Walk(t, func(n *domain.Node, _ int) bool {
		if n.IsLeaf() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Find returns the node with the given identifier. Identifiers absorbed by
// chain compression resolve to the node that absorbed them.
func Find(t *domain.Tree, id int64) (*domain.Node, bool) {
	if t.IsEmpty() {
		return nil, false
	}
	var merged *domain.Node
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.ID == id {
			return n, true
		}
		if merged == nil {
			for _, m := range n.MergedIDs {
				if m == id {
					merged = n
					break
				}
			}
		}
	}
	return merged, merged != nil
}

// PathTo returns the root-to-node identifier sequence for id.
// Trees without annotated paths are resolved through parent links.
func PathTo(t *domain.Tree, id int64) ([]int64, error) {
	n, ok := Find(t, id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
	}
	if len(n.Path) > 0 {
		return append([]int64(nil), n.Path...), nil
	}

	var rev []int64
	for cur := n; ; cur = &t.Nodes[cur.Parent] {
		rev = append(rev, cur.ID)
		if cur.Parent == domain.NoNode {
			break
		}
	}
	path := make([]int64, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path, nil
}
