package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ts-factory/bublik-logtree/internal/cli"
	"github.com/ts-factory/bublik-logtree/internal/config"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "logtree.yaml"

var rootCmd = &cobra.Command{
	Use:   "logtree",
	Short: "logtree normalizes Bublik log trees",
	Long: `logtree fetches the log tree of a Bublik run, normalizes its keys,
annotates parents and paths and compresses single-child chains, then serves
the result over HTTP and MCP or renders it in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: ./logtree.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("dir", "", "Read runs from <dir>/<run-id>.json instead of the upstream API")
	rootCmd.PersistentFlags().String("upstream", "", "Base URL of the Bublik API")
}

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("dir") {
		cfg.Source.Kind = "file"
		cfg.Source.Dir, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("upstream") {
		cfg.Source.Kind = "http"
		cfg.Upstream.BaseURL, _ = cmd.Flags().GetString("upstream")
	}
	return cfg, cfg.Validate()
}

// newRuntime loads the configuration and wires the service.
func newRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(cfg, cli.NewLogger(cfg.Log))
}
