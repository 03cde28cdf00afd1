package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// TextOptions configures RenderText.
type TextOptions struct {
	// Profile selects the color depth; termenv.Ascii disables colors.
	Profile termenv.Profile
	// ShowIDs appends node identifiers to labels.
	ShowIDs bool
	// MaxDepth stops descending below this depth when positive.
	MaxDepth int
}

// ProfileFor returns the color profile for f: colors on terminals only.
func ProfileFor(f *os.File) termenv.Profile {
	if term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(f).Profile
	}
	return termenv.Ascii
}

// TerminalWidth returns the width of f, or 0 when f is not a terminal.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

var kindColors = map[domain.Kind]string{
	domain.KindPackage:   "#818cf8",
	domain.KindSession:   "#c084fc",
	domain.KindTest:      "#9ca3af",
	domain.KindIteration: "#6b7280",
}

const errorColor = "#ef4444"

// RenderText writes the tree as an indented outline with box-drawing guides.
func RenderText(w io.Writer, t *domain.Tree, opts TextOptions) error {
	if t.IsEmpty() {
		_, err := fmt.Fprintln(w, "(empty tree)")
		return err
	}

	// last[d] tells whether the ancestor at depth d was the last child.
	var last []bool
	var err error
	tree.Walk(t, func(n *domain.Node, depth int) bool {
		if err != nil {
			return false
		}
		if len(last) > depth {
			last = last[:depth]
		}
		isLast := true
		if n.Parent != domain.NoNode {
			siblings := t.Nodes[n.Parent].Children
			isLast = &t.Nodes[siblings[len(siblings)-1]] == n
		}
		last = append(last, isLast)

		var prefix strings.Builder
		for d := 1; d < depth; d++ {
			if last[d] {
				prefix.WriteString("    ")
			} else {
				prefix.WriteString("│   ")
			}
		}
		if depth > 0 {
			if isLast {
				prefix.WriteString("└── ")
			} else {
				prefix.WriteString("├── ")
			}
		}

		_, err = fmt.Fprintf(w, "%s%s\n", prefix.String(), label(n, opts))
		return opts.MaxDepth <= 0 || depth < opts.MaxDepth
	})
	return err
}

func label(n *domain.Node, opts TextOptions) string {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("#%d", n.ID)
	}

	color := kindColors[n.Kind]
	if n.HasError {
		color = errorColor
	}
	s := opts.Profile.String(name).Foreground(opts.Profile.Color(color))
	if n.Kind.IsContainer() {
		s = s.Bold()
	}

	var sb strings.Builder
	sb.WriteString(s.String())
	if opts.ShowIDs {
		sb.WriteString(opts.Profile.String(fmt.Sprintf(" [%d]", n.ID)).Faint().String())
	}
	if n.Skipped {
		sb.WriteString(" (skipped)")
	}
	if n.HasError {
		sb.WriteString(opts.Profile.String(" ✗").Foreground(opts.Profile.Color(errorColor)).String())
	}
	return sb.String()
}

// Markdown renders the tree as a nested markdown list.
func Markdown(t *domain.Tree, title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	if t.IsEmpty() {
		sb.WriteString("_empty tree_\n")
		return sb.String()
	}

	tree.Walk(t, func(n *domain.Node, depth int) bool {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("#%d", n.ID)
		}
		if n.Kind.IsContainer() {
			name = "**" + name + "**"
		}
		if n.HasError {
			name += " ❌"
		}
		fmt.Fprintf(&sb, "%s- %s `%s` (%d)\n", strings.Repeat("  ", depth), name, n.Kind, n.ID)
		return true
	})
	return sb.String()
}

// RenderMarkdown renders the tree through glamour for terminal display.
func RenderMarkdown(t *domain.Tree, title string, width int) (string, error) {
	render, err := NewRenderer(width)
	if err != nil {
		return "", err
	}
	return render(Markdown(t, title))
}
