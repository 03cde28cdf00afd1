package tree

import "github.com/ts-factory/bublik-logtree/pkg/domain"

type parentItem struct {
	raw    *domain.RawNode
	parent int
}

// AnnotateParents flattens a decoded tree into an arena and stamps every node
// with its parent's identifier. Nodes are laid out depth-first, root first,
// keeping each node's child order. A nil root yields the empty tree.
func AnnotateParents(root *domain.RawNode) *domain.Tree {
	if root == nil {
		return domain.EmptyTree()
	}

	t := &domain.Tree{Root: 0}
	stack := []parentItem{{raw: root, parent: domain.NoNode}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := len(t.Nodes)
		node := domain.Node{
			ID:         item.raw.ID,
			Name:       item.raw.Name,
			Kind:       item.raw.Kind,
			HasError:   item.raw.HasError,
			Skipped:    item.raw.Skipped,
			Attributes: copyAttributes(item.raw.Attributes),
			Parent:     item.parent,
		}
		if item.parent != domain.NoNode {
			parent := &t.Nodes[item.parent]
			id := parent.ID
			node.ParentID = &id
			parent.Children = append(parent.Children, idx)
		}
		t.Nodes = append(t.Nodes, node)

		// Reverse push so the first child is popped first.
		for i := len(item.raw.Children) - 1; i >= 0; i-- {
			stack = append(stack, parentItem{raw: item.raw.Children[i], parent: idx})
		}
	}
	return t
}

func copyAttributes(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
