package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ts-factory/bublik-logtree/internal/presentation/graph"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the normalized log tree of a run",
	Long: `Fetches the log tree of a run and prints it as a terminal outline, a markdown
list, a Mermaid flowchart or JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID("run-id", args[0])
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		t, err := rt.Service.Tree(cmd.Context(), runID)
		if err != nil {
			return err
		}

		opts := renderOptionsFrom(cmd)
		opts.RunID = &runID
		opts.Title = fmt.Sprintf("Run %d", runID)

		if cmd.Flags().Changed("path") {
			nodeID, _ := cmd.Flags().GetInt64("path")
			path, err := rt.Service.NodePath(cmd.Context(), runID, nodeID)
			if err != nil {
				return err
			}
			selected := path[len(path)-1]
			opts.Overlay = &graph.TreeOverlay{Path: path, Selected: &selected}
		}

		warnIssues(cmd.ErrOrStderr(), t)
		return writeTree(cmd.OutOrStdout(), t, opts)
	},
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
	addRenderFlags(showCmd)
	showCmd.Flags().Int64("path", 0, "Highlight the path to this node (mermaid)")
}
