package graph

import (
	"fmt"
	"strings"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// TreeOverlay highlights part of a tree, typically a deep-link path.
type TreeOverlay struct {
	// Path is the root-to-node identifier sequence to highlight.
	Path []int64
	// Selected is the node at the end of the path, drawn as current.
	Selected *int64
}

// GenerateMermaid produces a Mermaid flowchart of the tree.
// It applies semantic styling:
// - Package: [Rectangle]
// - Session: ([Stadium])
// - Test: [/Parallelogram/]
// - Iteration: ((Circle))
// Nodes with errors are styled as failed, and overlay styles
// (onpath/current) are applied if provided.
func GenerateMermaid(t *domain.Tree, overlay *TreeOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if t.IsEmpty() {
		sb.WriteString("    empty[\"(empty)\"]\n")
		return sb.String()
	}

	var failed []string
	for i := range t.Nodes {
		node := &t.Nodes[i]
		safeID := mermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindSession:
			opener, closer = "([", "])"
		case domain.KindTest:
			opener, closer = "[/", "/]"
		case domain.KindIteration:
			opener, closer = "((", "))"
		}

		label := escapeLabel(node.Name)
		if label == "" {
			label = fmt.Sprintf("#%d", node.ID)
		}
		if len(node.MergedIDs) > 0 {
			// Merged chains get a marker so absorbed levels are not mistaken for one node.
			label += " <br/> ⋯"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if node.Parent != domain.NoNode {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(t.Nodes[node.Parent].ID), safeID))
		}
		if node.HasError {
			failed = append(failed, safeID)
		}
	}

	if len(failed) > 0 {
		sb.WriteString("\n    %% Result Styles\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		for _, id := range failed {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast on light fills.
		sb.WriteString("    classDef onpath fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int64]bool)
		for _, id := range overlay.Path {
			if seen[id] || (overlay.Selected != nil && *overlay.Selected == id) {
				continue
			}
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class %s onpath;\n", mermaidID(id)))
		}
		if overlay.Selected != nil {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", mermaidID(*overlay.Selected)))
		}
	}

	return sb.String()
}

func mermaidID(id int64) string {
	if id < 0 {
		return fmt.Sprintf("n_%d", -id)
	}
	return fmt.Sprintf("n%d", id)
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
