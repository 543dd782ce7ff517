package main

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ricesearch/rbo/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Serve RBO comparisons over HTTP:

  POST /v1/rbo          compare two ranked lists
  POST /v1/rbo/scores   compare two score mappings
  POST /v1/rbo/batch    compare many pairs
  GET  /healthz         liveness

Examples:
  rbo serve                        # Start with defaults (0.0.0.0:8080)
  rbo serve --port 9000            # Custom port
  rbo serve --rate-limit 50        # 50 requests/sec per client`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("host") {
				e.cfg.Server.Host, _ = flags.GetString("host")
			}
			if flags.Changed("port") {
				e.cfg.Server.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("rate-limit") {
				e.cfg.Server.RateLimit, _ = flags.GetInt("rate-limit")
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
			defer stop()
			return e.serve(ctx)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	cmd.Flags().Int("port", 8080, "HTTP server port")
	cmd.Flags().Int("rate-limit", 0, "requests per second per client (0 disables)")

	return cmd
}

func (e *env) serve(ctx context.Context) error {
	defaults, err := e.batchConfig()
	if err != nil {
		return err
	}
	c, err := e.openCache()
	if err != nil {
		return err
	}
	if c != nil {
		defer func() {
			if err := c.Close(); err != nil {
				e.log.WithError(err).Warn("Error closing cache")
			}
		}()
	}

	cfg := server.DefaultConfig()
	cfg.Addr = e.cfg.Address()
	cfg.Version = version
	cfg.RateLimit = e.cfg.Server.RateLimit

	e.log.Info("Serving RBO API",
		"addr", cfg.Addr,
		"p", defaults.P,
		"mode", defaults.Mode.String(),
		"cache", e.cfg.Cache.Type,
		"rate_limit", cfg.RateLimit,
	)
	return server.New(cfg, defaults, c, e.log).Run(ctx)
}
