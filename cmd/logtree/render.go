package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ts-factory/bublik-logtree/internal/presentation/graph"
	"github.com/ts-factory/bublik-logtree/internal/presentation/tui"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// Output formats accepted by --format.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatMermaid  = "mermaid"
	formatJSON     = "json"
	formatFlat     = "flat"
)

type renderOptions struct {
	Format   string
	Title    string
	RunID    *int64
	ShowIDs  bool
	MaxDepth int
	Overlay  *graph.TreeOverlay
}

// treeDocument is the JSON document printed by --format json|flat.
type treeDocument struct {
	RunID  *int64             `json:"runId,omitempty"`
	Empty  bool               `json:"empty,omitempty"`
	Root   *domain.PathedNode `json:"root,omitempty"`
	Nodes  []domain.Node      `json:"nodes,omitempty"`
	Issues []domain.Issue     `json:"issues,omitempty"`
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", formatText, "Output format: text, markdown, mermaid, json or flat")
	cmd.Flags().Bool("ids", false, "Show node identifiers (text)")
	cmd.Flags().Int("depth", 0, "Maximum depth to print, 0 for all (text)")
}

func renderOptionsFrom(cmd *cobra.Command) renderOptions {
	format, _ := cmd.Flags().GetString("format")
	ids, _ := cmd.Flags().GetBool("ids")
	depth, _ := cmd.Flags().GetInt("depth")
	return renderOptions{Format: format, ShowIDs: ids, MaxDepth: depth}
}

// writeTree prints t to w in the requested format.
func writeTree(w io.Writer, t *domain.Tree, opts renderOptions) error {
	switch opts.Format {
	case formatText, "":
		return tui.RenderText(w, t, tui.TextOptions{
			Profile:  profileFor(w),
			ShowIDs:  opts.ShowIDs,
			MaxDepth: opts.MaxDepth,
		})

	case formatMarkdown:
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			_, err := io.WriteString(w, tui.Markdown(t, opts.Title))
			return err
		}
		out, err := tui.RenderMarkdown(t, opts.Title, tui.TerminalWidth(f))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err

	case formatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(t, opts.Overlay))
		return err

	case formatJSON, formatFlat:
		doc := treeDocument{RunID: opts.RunID, Empty: t.IsEmpty(), Issues: t.Issues}
		if !doc.Empty {
			if opts.Format == formatJSON {
				doc.Root = tree.Nest(t)
			} else {
				doc.Nodes = t.Nodes
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

func profileFor(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok {
		return tui.ProfileFor(f)
	}
	return termenv.Ascii
}

// warnIssues reports skipped subtrees on stderr.
func warnIssues(w io.Writer, t *domain.Tree) {
	for _, issue := range t.Issues {
		fmt.Fprintf(w, "warning: skipped %s\n", issue)
	}
}
