package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/guppy-rs/guppy/internal/config"
	"github.com/guppy-rs/guppy/internal/server"
	"github.com/guppy-rs/guppy/pkg/observability"
)

// serveCommand creates the serve command, which exposes the graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <metadata.json>",
		Short: "Serve the package graph over a read-only HTTP API",
		Long: `Serve the package graph over a read-only JSON API.

Routes:
  GET /packages, /packages/{id}, /packages/{id}/deps
  GET /topo, /workspace
  GET /healthz, /metrics (Prometheus)

Package IDs in paths must be URL path-escaped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: "+config.DefaultAddr+")")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string) error {
	metrics := server.NewMetrics()
	observability.SetBuildHooks(metrics)
	observability.SetQueryHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	srv := server.New(g, server.WithLogger(c.Logger), server.WithMetrics(metrics))
	return srv.ListenAndServe(ctx, addr)
}
