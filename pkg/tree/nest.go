package tree

import "github.com/ts-factory/bublik-logtree/pkg/domain"

// Nest converts an arena tree into nested nodes. It returns nil for the empty
// tree.
func Nest(t *domain.Tree) *domain.PathedNode {
	if t.IsEmpty() {
		return nil
	}

	nested := make([]*domain.PathedNode, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		p := &domain.PathedNode{
			ID:         n.ID,
			Name:       n.Name,
			Kind:       n.Kind,
			Path:       append([]int64{}, n.Path...),
			MergedIDs:  append([]int64(nil), n.MergedIDs...),
			HasError:   n.HasError,
			Skipped:    n.Skipped,
			Attributes: copyAttributes(n.Attributes),
			Children:   make([]*domain.PathedNode, 0, len(n.Children)),
		}
		if n.ParentID != nil {
			id := *n.ParentID
			p.ParentID = &id
		}
		nested[i] = p
	}
	for i := range t.Nodes {
		for _, c := range t.Nodes[i].Children {
			nested[i].Children = append(nested[i].Children, nested[c])
		}
	}
	return nested[t.Root]
}
