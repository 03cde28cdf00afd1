package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ts-factory/bublik-logtree"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of logtree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logtree version %s\n", strings.TrimSpace(logtree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
