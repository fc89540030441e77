package commands

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/corpussearch/docsearch/internal/logging"
	"github.com/corpussearch/docsearch/internal/metrics"
)

// NewServeMetricsCmd constructs the `docsearch serve-metrics` command, an
// opt-in process that registers the engine's Prometheus counters/histograms
// in its own registry and serves them over HTTP. docsearch has no
// query-serving HTTP API of its own (ingest and search both run as one-shot
// CLI invocations, each recording into a registry of its own), so this is
// the only long-running process the binary offers. Values recorded by
// separate ingest or search processes do not reach this registry.
func NewServeMetricsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics over HTTP until interrupted",
		Long: `Register the engine's ingestion and search metrics against a dedicated
registry and serve them at /metrics on --addr, blocking until the process
is interrupted.

docsearch's ingest and search commands are one-shot CLI invocations, not a
long-running server, and each records into a registry of its own. This
command serves only its own registry: nothing in this process ingests or
searches, so the series it exposes keep their initial values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.FromContext(cmd.Context())

			reg := prometheus.NewRegistry()
			metrics.New(reg)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			log.Info("serve-metrics: listening", slog.String("addr", addr))
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9464", "Address to serve /metrics on")

	return cmd
}
