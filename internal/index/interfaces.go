// Package index defines the capability contracts every retrieval backend
// adapter implements: KeywordIndex, VectorIndex, GraphIndex. These are
// small, independent interfaces (capability composition, not an
// inheritance hierarchy), ported from the original implementation's
// traits module and directly modelled on the teacher's
// internal/rag.VectorStore/Embedder/Retriever split.
package index

import (
	"context"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// KeywordIndex is a lexical full-text backend (e.g. OpenSearch/Elasticsearch).
type KeywordIndex interface {
	IndexKeywordChunks(ctx context.Context, chunks []docmodel.PdfChunk) error
	SearchKeyword(ctx context.Context, query docmodel.SearchQuery) ([]docmodel.SearchCandidate, error)
}

// VectorIndex is a dense vector similarity backend (e.g. Qdrant).
type VectorIndex interface {
	IndexVectorChunks(ctx context.Context, chunks []docmodel.PdfChunk, embeddings [][]float32) error
	SearchVector(ctx context.Context, queryVector []float32, query docmodel.SearchQuery) ([]docmodel.SearchCandidate, error)
}

// GraphIndex is a citation-graph backend (e.g. Neo4j).
type GraphIndex interface {
	SyncGraphRelations(ctx context.Context, chunks []docmodel.PdfChunk) error
	RelatedChunks(ctx context.Context, chunkIDs []string) ([]docmodel.SearchCandidate, error)
}

// StoreHit is a single raw hit returned by a backend adapter before it is
// converted into a SearchCandidate. Ported from the original's StoreHit.
type StoreHit struct {
	Source  string
	Score   float64
	Chunk   *docmodel.PdfChunk
	ChunkID string
	Text    string
}

// IntoCandidate converts a StoreHit into a SearchCandidate tagged with mode.
func (h StoreHit) IntoCandidate(mode docmodel.SearchMode) docmodel.SearchCandidate {
	return docmodel.SearchCandidate{
		ChunkID: h.ChunkID,
		Score:   h.Score,
		Source:  h.Source,
		Chunk:   h.Chunk,
		Text:    h.Text,
		Mode:    mode,
	}
}
