package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/api"
	"github.com/mesh-intelligence/shelf/internal/inventory"
	"github.com/mesh-intelligence/shelf/internal/metrics"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory over HTTP",
		Long: `Serve exposes the inventory as a JSON API under /v1 and Prometheus
metrics under /metrics. It stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.HTTP.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return sysError(err)
			}

			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withInventory(m, func(inv *inventory.Inventory) error {
				srv := api.New(inv,
					api.WithLogger(a.logger),
					api.WithGatherer(reg),
					api.WithRateLimit(a.config.HTTP.RateLimit, a.config.HTTP.Burst),
				)
				if err := srv.Serve(ctx, addr); err != nil {
					return sysError(err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.addr from config.yaml)")
	return cmd
}
