// Package commands defines all Cobra CLI commands for the docsearch binary.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/corpussearch/docsearch/internal/audit"
	"github.com/corpussearch/docsearch/internal/config"
	"github.com/corpussearch/docsearch/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// backendFlags holds the global backend endpoint/credential flags. Each
// flag set on the command line overrides both the YAML config and the environment for
// the duration of the process, matching the "flags beat everything" rule.
var backendFlags struct {
	opensearchURL    string
	opensearchIndex  string
	qdrantURL        string
	qdrantCollection string
	neo4jURL         string
	neo4jDB          string
	neo4jUser        string
	neo4jPassword    string
}

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsearch",
		Short: "docsearch — fused keyword/vector/graph retrieval over a PDF corpus",
		Long: `docsearch ingests a folder of PDF documents into a keyword index, a vector
index, and a graph index, then answers free-text queries by fanning out to
all three backends and fusing the results with reciprocal rank fusion.

Backend endpoints are selected via global flags or environment variables,
with an optional YAML config file (~/.docsearch/config.yaml) as the lowest
precedence layer. See 'docsearch --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()
			cmd.SetContext(logging.WithLogger(cmd.Context(), log))

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Explicit CLI flags override both YAML and pre-existing env vars.
			applyBackendFlagOverrides(cmd)

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.docsearch/config.yaml)")

	root.PersistentFlags().StringVar(&backendFlags.opensearchURL, "opensearch-url", "", "OpenSearch/Elasticsearch endpoint URL (repeatable via comma-separated list)")
	root.PersistentFlags().StringVar(&backendFlags.opensearchIndex, "opensearch-index", "", "OpenSearch index name holding chunk documents")
	root.PersistentFlags().StringVar(&backendFlags.qdrantURL, "qdrant-url", "", "Qdrant host name (the gRPC port comes from QDRANT_PORT)")
	root.PersistentFlags().StringVar(&backendFlags.qdrantCollection, "qdrant-collection", "", "Qdrant collection name")
	root.PersistentFlags().StringVar(&backendFlags.neo4jURL, "neo4j-url", "", "Neo4j HTTP transactional-Cypher base URL")
	root.PersistentFlags().StringVar(&backendFlags.neo4jDB, "neo4j-db", "", "Neo4j database name")
	root.PersistentFlags().StringVar(&backendFlags.neo4jUser, "neo4j-user", "", "Neo4j username")
	root.PersistentFlags().StringVar(&backendFlags.neo4jPassword, "neo4j-password", "", "Neo4j password")

	root.AddCommand(
		NewIngestCmd(),
		NewSearchCmd(),
		NewVersionCmd(),
		NewServeMetricsCmd(),
	)

	return root
}

// applyBackendFlagOverrides exports every changed global backend flag as an
// environment variable, taking precedence over both YAML config and any
// pre-existing env var (flags are the most specific, most recent input).
func applyBackendFlagOverrides(cmd *cobra.Command) {
	set := func(flag, envKey string, dst *string) {
		if cmd.Flags().Changed(flag) {
			os.Setenv(envKey, *dst)
		}
	}
	set("opensearch-url", "OPENSEARCH_ADDRESSES", &backendFlags.opensearchURL)
	set("opensearch-index", "OPENSEARCH_INDEX", &backendFlags.opensearchIndex)
	set("qdrant-url", "QDRANT_HOST", &backendFlags.qdrantURL)
	set("qdrant-collection", "QDRANT_COLLECTION", &backendFlags.qdrantCollection)
	set("neo4j-url", "NEO4J_ENDPOINT", &backendFlags.neo4jURL)
	set("neo4j-db", "NEO4J_DATABASE", &backendFlags.neo4jDB)
	set("neo4j-user", "NEO4J_USERNAME", &backendFlags.neo4jUser)
	set("neo4j-password", "NEO4J_PASSWORD", &backendFlags.neo4jPassword)
}
