package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ts-factory/bublik-logtree/internal/cli"
	"github.com/ts-factory/bublik-logtree/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes log trees to AI agents as MCP tools: get_log_tree, get_node_path
and normalize_tree.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(rt.Service, mcp.WithLogger(rt.Logger))

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			rt.Logger.Info("Starting logtree MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			addr := rt.Config.Server.MCPAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, addr); err != nil {
				return err
			}
			rt.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Address to listen on (only for SSE, overrides server.mcp_addr)")
}
