package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm <run-id>...",
	Short: "Build and cache the trees of runs ahead of time",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseID("run-id", arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.Config.Cache.Backend == "none" {
			rt.Logger.Warn("Cache is disabled, warmed trees will not be kept")
		}

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if err := rt.Service.Warm(cmd.Context(), concurrency, ids...); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "warmed %d runs\n", len(ids))
		return err
	},
}

func init() {
	rootCmd.AddCommand(warmCmd)
	warmCmd.Flags().IntP("concurrency", "c", 4, "Number of runs built in parallel")
}
