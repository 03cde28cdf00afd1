package tree

import "github.com/ts-factory/bublik-logtree/pkg/domain"

type pathItem struct {
	idx    int
	prefix []int64
}

// AnnotatePaths returns a copy of t where every node carries the identifiers
// from the root down to and including itself. Each node owns its path slice.
func AnnotatePaths(t *domain.Tree) *domain.Tree {
	if t.IsEmpty() {
		return domain.EmptyTree()
	}

	out := t.Clone()
	stack := []pathItem{{idx: out.Root}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &out.Nodes[item.idx]
		path := make([]int64, len(item.prefix)+1)
		copy(path, item.prefix)
		path[len(item.prefix)] = node.ID
		node.Path = path

		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, pathItem{idx: node.Children[i], prefix: path})
		}
	}
	return out
}
