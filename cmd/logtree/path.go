package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path <run-id> <node-id>",
	Short: "Print the root-to-node path of a node",
	Long:  `Resolves a node of a run, including nodes absorbed by chain compression, and prints its path.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID("run-id", args[0])
		if err != nil {
			return err
		}
		nodeID, err := parseID("node-id", args[1])
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		path, err := rt.Service.NodePath(cmd.Context(), runID, nodeID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return json.NewEncoder(out).Encode(map[string]any{"path": path})
		}
		parts := make([]string, len(path))
		for i, id := range path {
			parts[i] = strconv.FormatInt(id, 10)
		}
		_, err = fmt.Fprintln(out, strings.Join(parts, " "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().Bool("json", false, `Print {"path": [...]}`)
}
