package tree

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// RootKey is the normalized name of the payload field holding the tree root.
const RootKey = "mainPackage"

// wireNode mirrors a normalized API node. Pointer fields detect absence.
type wireNode struct {
	ID       *int64         `mapstructure:"id"`
	Name     string         `mapstructure:"name"`
	Type     string         `mapstructure:"type"`
	HasError bool           `mapstructure:"hasError"`
	Skipped  bool           `mapstructure:"skipped"`
	Children []any          `mapstructure:"children"`
	Rest     map[string]any `mapstructure:",remain"`
}

type decodeItem struct {
	data     any
	location string
	parent   *domain.RawNode
}

// Decode reads the main package of a normalized payload into typed nodes.
//
// Malformed nodes are skipped together with their subtree and reported as
// issues. ErrMissingRoot is returned when the payload has no usable root.
func Decode(normalized any) (*domain.RawNode, []domain.Issue, error) {
	doc, ok := normalized.(map[string]any)
	if !ok {
		return nil, nil, domain.ErrMissingRoot
	}
	rootData, ok := doc[RootKey]
	if !ok || rootData == nil {
		return nil, nil, domain.ErrMissingRoot
	}

	var (
		root   *domain.RawNode
		issues []domain.Issue
		seen   = make(map[int64]string)
	)

	// Breadth-first with a FIFO queue: siblings are decoded in order, so
	// appending to the parent keeps document order.
	queue := []decodeItem{{data: rootData, location: RootKey}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		node, children, issue := decodeNode(item.data, item.location, seen)
		if issue != nil {
			issues = append(issues, *issue)
			if item.parent == nil {
				return nil, issues, domain.ErrMissingRoot
			}
			continue
		}
		seen[node.ID] = item.location

		if item.parent == nil {
			root = node
		} else {
			item.parent.Children = append(item.parent.Children, node)
		}

		for i, child := range children {
			queue = append(queue, decodeItem{
				data:     child,
				location: fmt.Sprintf("%s.children[%d]", item.location, i),
				parent:   node,
			})
		}
	}

	return root, issues, nil
}

func decodeNode(data any, location string, seen map[int64]string) (*domain.RawNode, []any, *domain.Issue) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, nil, &domain.Issue{Location: location, Reason: fmt.Sprintf("expected object, got %T", data)}
	}

	var w wireNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &w,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, &domain.Issue{Location: location, Reason: err.Error()}
	}
	if err := dec.Decode(m); err != nil {
		return nil, nil, &domain.Issue{Location: location, Reason: fmt.Sprintf("malformed node: %v", err)}
	}

	if w.ID == nil {
		return nil, nil, &domain.Issue{Location: location, Reason: "missing id"}
	}
	if first, dup := seen[*w.ID]; dup {
		return nil, nil, &domain.Issue{Location: location, NodeID: w.ID, Reason: "duplicate id, first seen at " + first}
	}

	kind, err := resolveKind(w.Type, len(w.Children) > 0)
	if err != nil {
		return nil, nil, &domain.Issue{Location: location, NodeID: w.ID, Reason: err.Error()}
	}

	node := &domain.RawNode{
		ID:       *w.ID,
		Name:     w.Name,
		Kind:     kind,
		HasError: w.HasError,
		Skipped:  w.Skipped,
	}
	if len(w.Rest) > 0 {
		node.Attributes = w.Rest
	}
	return node, w.Children, nil
}

// resolveKind parses the API type. Nodes without a type are inferred from
// their shape: anything with children is a package, anything else a test.
func resolveKind(raw string, hasChildren bool) (domain.Kind, error) {
	if raw == "" {
		if hasChildren {
			return domain.KindPackage, nil
		}
		return domain.KindTest, nil
	}
	kind, ok := domain.ParseKind(raw)
	if !ok {
		return "", fmt.Errorf("unknown node type %q", raw)
	}
	return kind, nil
}
