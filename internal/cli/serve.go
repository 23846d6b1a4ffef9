package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchendesigner/internal/server"
	"github.com/matzehuels/kitchendesigner/pkg/config"
)

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints:
  GET  /healthz       liveness
  GET  /v1/engines    engines and their availability
  POST /v1/validate   check and compile a document
  POST /v1/solve      solve a document and return the layout

Solver, cache and listener settings come from the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the solution cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	defaults := baseOptions(cfg)
	defaults.Logger = c.Logger
	srv := server.New(runner, server.Options{
		Defaults:       defaults,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         c.Logger,
	})

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
