package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/corpussearch/docsearch/internal/embedding"
	"github.com/corpussearch/docsearch/internal/ingest"
	"github.com/corpussearch/docsearch/internal/logging"
)

// NewIngestCmd constructs the `docsearch ingest` command, which recursively
// walks a folder of PDFs, chunks each one, and writes the resulting chunks
// into the keyword, vector, and graph backends in parallel.
func NewIngestCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Recursively ingest a folder of PDFs into the keyword, vector, and graph indexes",
		Long: `Walk --folder recursively for files whose extension is .pdf (case
insensitive), extract and chunk each one, embed every chunk with the
deterministic character n-gram embedder, and write the results into the
OpenSearch, Qdrant, and Neo4j backends.

Ingestion is best-effort per file: a file that fails to parse or chunk is
recorded as skipped and the run continues with the remaining files. An
empty folder (zero PDFs found) is a fatal error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if folder == "" {
				return fmt.Errorf("ingest: --folder is required")
			}

			backends, err := buildBackends(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer backends.Close()

			options := buildIngestionOptions()
			ocr := buildOcrClient()
			m := buildMetrics()

			report, err := ingest.IngestFolderChunksBestEffort(folder, options, ocr, log, m)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			if len(report.Chunks) > 0 {
				embedder := embedding.CharacterNgramEmbedder{Dimensions_: backends.vectorSize}
				embeddings := make([][]float32, len(report.Chunks))
				for i, chunk := range report.Chunks {
					embeddings[i] = embedder.Embed(chunk.TextNormalized)
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return backends.Keyword.IndexKeywordChunks(gctx, report.Chunks)
				})
				g.Go(func() error {
					return backends.Vector.IndexVectorChunks(gctx, report.Chunks, embeddings)
				})
				g.Go(func() error {
					return backends.Graph.SyncGraphRelations(gctx, report.Chunks)
				})
				if err := g.Wait(); err != nil {
					return fmt.Errorf("ingest: failed to write to backends: %w", err)
				}
			}

			log.Info("ingestion complete",
				slog.Int("chunks", len(report.Chunks)),
				slog.Int("skipped", len(report.SkippedFiles)),
			)

			fmt.Printf("%d chunks ingested at %s\n", len(report.Chunks), time.Now().UTC().Format(time.RFC3339))

			if len(report.SkippedFiles) > 0 {
				fmt.Printf("%d files skipped:\n", len(report.SkippedFiles))
				for _, skipped := range report.SkippedFiles {
					fmt.Printf("  %s: %s\n", skipped.Path, skipped.Reason)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to ingest recursively (required)")

	return cmd
}
