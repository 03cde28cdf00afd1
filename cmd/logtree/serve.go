package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ts-factory/bublik-logtree/internal/cli"
	"github.com/ts-factory/bublik-logtree/internal/presentation/tui"
	httpAdapter "github.com/ts-factory/bublik-logtree/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Serves normalized log trees as JSON over HTTP, with an OpenAPI description and Prometheus metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := rt.Config
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(rt.Logger),
			httpAdapter.WithMaxBody(cfg.Server.MaxBody),
		}
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(rt.Service, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), tui.ProfileFor(os.Stderr))
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		serverErrors := make(chan error, 1)
		go func() {
			rt.Logger.Info("Starting logtree server",
				"addr", srv.Addr,
				"source", cfg.Source.Kind,
				"cache", cfg.Cache.Backend,
				"metrics", cfg.Server.Metrics,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			rt.Logger.Info("Start shutdown", "signal", ctx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				rt.Logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to close server: %w", err)
				}
			}
			rt.Logger.Info("logtree server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
