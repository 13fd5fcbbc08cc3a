package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/keyforge/internal/server"
	"github.com/matzehuels/keyforge/pkg/observability"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/workspace"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over HTTP",
		Long: `Serve the workspace over a JSON HTTP API, with Prometheus metrics on
/metrics. The store and cache come from the config file; the listen
address defaults to [server] addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			defaults, err := c.layoutOptions(layoutFlags{})
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			observability.NewPrometheus(reg).Install()
			defer observability.Reset()

			s, err := cfg.OpenStore(ctx)
			if err != nil {
				return err
			}
			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				s.Close()
				return err
			}
			runner := pipeline.NewRunner(cc, cfg.Keyer(), c.Logger)
			ws := workspace.New(s, runner, c.Logger)
			defer ws.Close()

			c.Logger.Info("starting api", "store", cfg.Store.Driver, "cache", cfg.Cache.Driver, "strategy", defaults.Strategy)
			srv := server.New(ws, runner, c.Logger, server.Options{
				Gatherer:     reg,
				Layout:       defaults,
				MaxNodeLimit: cfg.Server.MaxNodeLimit,
			})
			if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, ctx.Err()) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
