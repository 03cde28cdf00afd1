package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file|-]",
	Short: "Normalize a raw log tree payload",
	Long: `Reads a raw Bublik tree payload from a file or standard input and prints the
normalized tree. Nothing is fetched or cached.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			payload []byte
			err     error
		)
		if len(args) == 0 || args[0] == "-" {
			payload, err = io.ReadAll(cmd.InOrStdin())
		} else {
			payload, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		t, err := rt.Service.Normalize(cmd.Context(), payload)
		if err != nil {
			return err
		}

		warnIssues(cmd.ErrOrStderr(), t)
		return writeTree(cmd.OutOrStdout(), t, renderOptionsFrom(cmd))
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	addRenderFlags(normalizeCmd)
}
