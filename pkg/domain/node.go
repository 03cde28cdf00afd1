package domain

// NoNode marks the absence of an arena index (the root's parent, or the root of an empty tree).
const NoNode = -1

// RawNode is a node decoded from the API payload.
// Children keep the server's document order.
type RawNode struct {
	ID       int64
	Name     string
	Kind     Kind
	HasError bool
	Skipped  bool

	// Attributes holds the remaining normalized fields of the node
	// (result, period, counters...). Values are shared and read-only.
	Attributes map[string]any

	Children []*RawNode
}

// Node is an entry of a Tree arena.
type Node struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"type"`

	// ParentID is nil only for the root.
	ParentID *int64 `json:"parentId"`

	// Path lists identifiers from the root down to and including this node.
	// It is empty until paths are annotated.
	Path []int64 `json:"path,omitempty"`

	// MergedIDs lists the identifiers of ancestors absorbed into this node by
	// chain compression, in root-to-leaf order.
	MergedIDs []int64 `json:"mergedIds,omitempty"`

	HasError   bool           `json:"hasError,omitempty"`
	Skipped    bool           `json:"skipped,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`

	// Parent and Children are indices into Tree.Nodes.
	Parent   int   `json:"parent"`
	Children []int `json:"children"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a flat log tree. Nodes are stored in depth-first order with the
// root first; every node references its children by index.
type Tree struct {
	Nodes      []Node  `json:"nodes"`
	Root       int     `json:"root"`
	Compressed bool    `json:"compressed,omitempty"`
	Issues     []Issue `json:"issues,omitempty"`
}

// EmptyTree returns the sentinel used when a payload has no main package.
func EmptyTree() *Tree {
	return &Tree{Root: NoNode}
}

// IsEmpty reports whether the tree has no root.
func (t *Tree) IsEmpty() bool {
	return t == nil || t.Root == NoNode || len(t.Nodes) == 0
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// RootNode returns the root or nil for the empty tree.
func (t *Tree) RootNode() *Node {
	if t.IsEmpty() {
		return nil
	}
	return &t.Nodes[t.Root]
}

// Clone returns a copy that shares no slices with t.
// Attribute values are shared since they are never mutated.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		Nodes:      make([]Node, len(t.Nodes)),
		Root:       t.Root,
		Compressed: t.Compressed,
		Issues:     append([]Issue(nil), t.Issues...),
	}
	for i, n := range t.Nodes {
		c := n
		if n.ParentID != nil {
			id := *n.ParentID
			c.ParentID = &id
		}
		c.Path = append([]int64(nil), n.Path...)
		c.MergedIDs = append([]int64(nil), n.MergedIDs...)
		c.Children = append([]int(nil), n.Children...)
		if n.Attributes != nil {
			c.Attributes = make(map[string]any, len(n.Attributes))
			for k, v := range n.Attributes {
				c.Attributes[k] = v
			}
		}
		out.Nodes[i] = c
	}
	return out
}

// PathedNode is the nested shape consumed by tree renderers.
type PathedNode struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Kind       Kind           `json:"type"`
	ParentID   *int64         `json:"parentId"`
	Path       []int64        `json:"path"`
	MergedIDs  []int64        `json:"mergedIds,omitempty"`
	HasError   bool           `json:"hasError,omitempty"`
	Skipped    bool           `json:"skipped,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Children   []*PathedNode  `json:"children"`
}
