// Package metrics registers the Prometheus metrics emitted by ingestion and
// search, ported from the teacher's internal/server newServerMetrics
// pattern: promauto.With(reg) against an injectable registry so tests can
// run against an isolated prometheus.Registry instead of the global default.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus metric emitted by the search engine.
type Metrics struct {
	// DocumentsIngestedTotal counts PDFs successfully ingested.
	DocumentsIngestedTotal prometheus.Counter

	// ChunksProducedTotal counts chunks produced across all ingested documents.
	ChunksProducedTotal prometheus.Counter

	// SkippedFilesTotal counts PDFs skipped during a best-effort ingestion
	// run, partitioned by failure reason.
	SkippedFilesTotal *prometheus.CounterVec

	// BackendSearchDurationSeconds records the per-backend latency of a
	// keyword/vector/graph fan-out leg, partitioned by backend name.
	BackendSearchDurationSeconds *prometheus.HistogramVec

	// FusedCandidatesTotal records how many candidates entered the RRF merge
	// per search, partitioned by backend.
	FusedCandidatesTotal *prometheus.HistogramVec
}

// New registers all metrics against reg and returns the populated Metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsIngestedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Total number of PDF documents successfully ingested.",
		}),

		ChunksProducedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total number of chunks produced across all ingested documents.",
		}),

		SkippedFilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "ingest",
			Name:      "skipped_files_total",
			Help:      "Total number of PDFs skipped during ingestion, partitioned by reason.",
		}, []string{"reason"}),

		BackendSearchDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "search",
			Name:      "backend_duration_seconds",
			Help:      "Latency of a single backend's contribution to a fused search, partitioned by backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),

		FusedCandidatesTotal: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "search",
			Name:      "fused_candidates",
			Help:      "Number of candidates a backend contributed to the RRF merge, partitioned by backend.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"backend"}),
	}
}
