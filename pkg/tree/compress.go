package tree

import (
	"strings"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// DefaultSeparator joins the names of merged chain members.
const DefaultSeparator = "/"

type compressItem struct {
	old    int
	parent int
}

// Compress collapses chains of single-child containers into one node.
//
// A chain starts at a non-root container whose only child is also a
// container, and follows single container children down to the first
// container that has several children or a single result child. The chain is
// replaced by one node that takes the deepest member's identifier and
// children, and whose name joins the member names with sep. Result nodes and
// nodes with several children always terminate a chain, and the root is never
// merged. Paths are cleared; annotate them again after compressing.
func Compress(t *domain.Tree, sep string) *domain.Tree {
	if t.IsEmpty() {
		return domain.EmptyTree()
	}
	if sep == "" {
		sep = DefaultSeparator
	}

	out := &domain.Tree{
		Nodes:      make([]domain.Node, 0, len(t.Nodes)),
		Root:       0,
		Compressed: true,
		Issues:     append([]domain.Issue(nil), t.Issues...),
	}

	stack := []compressItem{{old: t.Root, parent: domain.NoNode}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		chain := []int{item.old}
		if item.parent != domain.NoNode {
			for cur := item.old; mergeable(t, cur); {
				cur = t.Nodes[cur].Children[0]
				chain = append(chain, cur)
			}
		}

		last := &t.Nodes[chain[len(chain)-1]]
		node := domain.Node{
			ID:         last.ID,
			Name:       last.Name,
			Kind:       last.Kind,
			HasError:   last.HasError,
			Skipped:    last.Skipped,
			Attributes: copyAttributes(last.Attributes),
			Parent:     item.parent,
		}
		if len(chain) > 1 {
			names := make([]string, 0, len(chain))
			for _, idx := range chain {
				member := &t.Nodes[idx]
				names = append(names, member.Name)
				node.MergedIDs = append(node.MergedIDs, member.MergedIDs...)
				if idx != chain[len(chain)-1] {
					node.MergedIDs = append(node.MergedIDs, member.ID)
				}
				node.HasError = node.HasError || member.HasError
			}
			node.Name = strings.Join(names, sep)
		} else {
			node.MergedIDs = append([]int64(nil), last.MergedIDs...)
		}

		idx := len(out.Nodes)
		if item.parent != domain.NoNode {
			parent := &out.Nodes[item.parent]
			id := parent.ID
			node.ParentID = &id
			parent.Children = append(parent.Children, idx)
		}
		out.Nodes = append(out.Nodes, node)

		for i := len(last.Children) - 1; i >= 0; i-- {
			stack = append(stack, compressItem{old: last.Children[i], parent: idx})
		}
	}
	return out
}

// mergeable reports whether the node at idx can absorb its only child.
func mergeable(t *domain.Tree, idx int) bool {
	n := &t.Nodes[idx]
	if !n.Kind.IsContainer() || len(n.Children) != 1 {
		return false
	}
	return t.Nodes[n.Children[0]].Kind.IsContainer()
}
