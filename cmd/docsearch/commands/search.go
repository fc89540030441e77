package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/corpussearch/docsearch/internal/docmodel"
	"github.com/corpussearch/docsearch/internal/embedding"
	"github.com/corpussearch/docsearch/internal/extract"
	"github.com/corpussearch/docsearch/internal/logging"
	"github.com/corpussearch/docsearch/internal/search"
)

// NewSearchCmd constructs the `docsearch search` command, which fans a
// query out to the keyword, vector, and graph backends and prints the
// fused, ranked hits.
func NewSearchCmd() *cobra.Command {
	var query string
	var topK int
	var explain bool
	var includeDocumentText bool
	var documentTextMaxPages int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the ingested corpus with fused keyword/vector/graph retrieval",
		Long: `Embed --query with the deterministic character n-gram embedder, fan the
request out to the keyword and vector backends concurrently, expand the
fused candidate set against the graph backend, apply reciprocal rank
fusion, and print the ranked hits.

--explain additionally prints the per-mode weight and advertised top-k used
during fusion. --include-document-text re-extracts and prints up to
--document-text-max-pages pages of the hit's source document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if !cmd.Flags().Changed("top-k") {
				topK = defaultTopK()
			}

			backends, err := buildBackends(ctx)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer backends.Close()

			coordinator := search.NewCoordinator(backends.Keyword, backends.Vector, backends.Graph)
			coordinator.Embedder = embedding.CharacterNgramEmbedder{Dimensions_: backends.vectorSize}
			coordinator.Metrics = buildMetrics()

			sq := docmodel.SearchQuery{
				Text:    query,
				TopK:    topK,
				Explain: explain,
			}

			result, err := coordinator.Search(ctx, sq)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			log.Info("search complete", slog.Int("hits", len(result.Hits)))

			for _, hit := range result.Hits {
				fmt.Printf("[%s] score=%.4f chunk=%s document_id=%s\n", hit.Source, hit.Score, hit.ChunkID, hit.DocumentID)

				if hit.SourcePath != "" {
					fmt.Printf("source=%s\n", hit.SourcePath)
				}

				if hit.Text != "" {
					fmt.Printf("chunk_text:\n%s\n", hit.Text)
				}

				if includeDocumentText && hit.SourcePath != "" {
					printDocumentText(hit.SourcePath, documentTextMaxPages)
				}
			}

			if explain {
				fmt.Println("explain:")
				for _, ms := range result.ModeScores {
					fmt.Printf("  %s top_k=%d weight=%.2f\n", ms.Mode, ms.Count, ms.Weight)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Free-text query (required)")
	cmd.Flags().IntVar(&topK, "top-k", 10, "Maximum number of hits to return")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print per-mode fusion weights after the hit list")
	cmd.Flags().BoolVar(&includeDocumentText, "include-document-text", false, "Re-extract and print the hit's source document text")
	cmd.Flags().IntVar(&documentTextMaxPages, "document-text-max-pages", 2, "Maximum pages of document text to print per hit")

	return cmd
}

// printDocumentText re-extracts path's page text via the same extractor
// used at ingest time and prints up to maxPages pages.
func printDocumentText(path string, maxPages int) {
	ocr := buildOcrClient()
	pages, err := extract.ExtractPageTexts(path, ocr)
	if err != nil {
		fmt.Printf("document_text: failed to extract %s: %v\n", path, err)
		return
	}

	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}

	fmt.Println("document_text:")
	for _, page := range pages {
		fmt.Printf("--- page %d ---\n%s\n", page.Number, page.Text)
	}
}
