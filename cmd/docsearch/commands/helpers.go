package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corpussearch/docsearch/internal/docmodel"
	"github.com/corpussearch/docsearch/internal/extract"
	"github.com/corpussearch/docsearch/internal/index"
	"github.com/corpussearch/docsearch/internal/index/neo4j"
	"github.com/corpussearch/docsearch/internal/index/opensearch"
	"github.com/corpussearch/docsearch/internal/index/qdrant"
	"github.com/corpussearch/docsearch/internal/metrics"
)

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable as an integer.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvBool returns true if the named environment variable is set to
// "true" (case-insensitive).
func getEnvBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}

// backendSet bundles the three capability-holding store adapters the
// search coordinator and ingestion writer both need. Each field satisfies
// the corresponding internal/index capability contract.
type backendSet struct {
	Keyword index.KeywordIndex
	Vector  index.VectorIndex
	Graph   index.GraphIndex

	vectorSize int

	closeVector func() error
}

// buildBackends constructs the three store adapters from environment
// configuration (populated from YAML, env vars, or CLI flags by the root
// command's PersistentPreRunE). vectorSize is the embedding dimension the
// Qdrant collection is provisioned with.
func buildBackends(ctx context.Context) (*backendSet, error) {
	addresses := splitAddresses(getEnvOrDefault("OPENSEARCH_ADDRESSES", "http://localhost:9200"))
	osIndex := getEnvOrDefault("OPENSEARCH_INDEX", "docsearch-chunks")
	kw, err := opensearch.New(addresses, osIndex)
	if err != nil {
		return nil, fmt.Errorf("opensearch: %w", err)
	}
	if err := kw.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("opensearch: %w", err)
	}

	vectorSize := getEnvInt("QDRANT_VECTOR_SIZE", 128)
	vec, err := qdrant.New(ctx, qdrant.Config{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnvOrDefault("QDRANT_COLLECTION", "docsearch-chunks"),
		VectorSize: uint64(vectorSize), //nolint:gosec // dimensions are bounded
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     getEnvBool("QDRANT_TLS"),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: %w", err)
	}

	graph := neo4j.New(
		getEnvOrDefault("NEO4J_ENDPOINT", "http://localhost:7474"),
		getEnvOrDefault("NEO4J_DATABASE", "neo4j"),
		os.Getenv("NEO4J_USERNAME"),
		os.Getenv("NEO4J_PASSWORD"),
	)

	return &backendSet{
		Keyword:     kw,
		Vector:      vec,
		Graph:       graph,
		vectorSize:  vectorSize,
		closeVector: vec.Close,
	}, nil
}

func (b *backendSet) Close() {
	if b.closeVector != nil {
		_ = b.closeVector()
	}
}

func splitAddresses(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildIngestionOptions derives chunk packing thresholds from environment
// configuration, falling back to the engine's documented defaults.
func buildIngestionOptions() docmodel.IngestionOptions {
	opts := docmodel.DefaultIngestionOptions()
	opts.ChunkMaxChars = getEnvInt("CHUNK_MAX_CHARS", opts.ChunkMaxChars)
	opts.ChunkOverlapChars = getEnvInt("CHUNK_OVERLAP_CHARS", opts.ChunkOverlapChars)
	opts.MinChunkChars = getEnvInt("CHUNK_MIN_CHARS", opts.MinChunkChars)
	return opts
}

// buildOcrClient constructs an OCR fallback client from the environment, or
// nil if LLM_OCR_ENDPOINT is unset.
func buildOcrClient() *extract.OcrClient {
	return extract.NewOcrClient(60 * time.Second)
}

// defaultTopK resolves the query top-k default from SEARCH_DEFAULT_TOP_K,
// falling back to 10.
func defaultTopK() int {
	return getEnvInt("SEARCH_DEFAULT_TOP_K", 10)
}

// buildMetrics registers a fresh set of Prometheus metrics against a
// process-local registry for the lifetime of a single ingest or search
// invocation. Both commands are one-shot CLI processes, so there is no
// long-running registry to share with `serve-metrics`.
func buildMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}
