package search

import (
	"context"
	"testing"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

type fakeKeyword struct{ hits []docmodel.SearchCandidate }

func (f fakeKeyword) IndexKeywordChunks(context.Context, []docmodel.PdfChunk) error { return nil }
func (f fakeKeyword) SearchKeyword(context.Context, docmodel.SearchQuery) ([]docmodel.SearchCandidate, error) {
	return f.hits, nil
}

type fakeVector struct{ hits []docmodel.SearchCandidate }

func (f fakeVector) IndexVectorChunks(context.Context, []docmodel.PdfChunk, [][]float32) error {
	return nil
}
func (f fakeVector) SearchVector(context.Context, []float32, docmodel.SearchQuery) ([]docmodel.SearchCandidate, error) {
	return f.hits, nil
}

type fakeGraph struct{ hits []docmodel.SearchCandidate }

func (f fakeGraph) SyncGraphRelations(context.Context, []docmodel.PdfChunk) error { return nil }
func (f fakeGraph) RelatedChunks(context.Context, []string) ([]docmodel.SearchCandidate, error) {
	return f.hits, nil
}

func TestCoordinatorUsesRRFFusionAcrossModes(t *testing.T) {
	keyword := fakeKeyword{hits: []docmodel.SearchCandidate{{
		ChunkID: "chunk-1", DocumentID: "doc-1", SourcePath: "/tmp/doc.pdf",
		Score: 0.9, Source: "opensearch", Text: "hydraulic pump failure pressure",
		Mode: docmodel.SearchModeKeyword,
	}}}
	vector := fakeVector{hits: []docmodel.SearchCandidate{{
		ChunkID: "chunk-1", DocumentID: "doc-1", SourcePath: "/tmp/doc.pdf",
		Score: 0.8, Source: "qdrant", Text: "hydraulic pump failure pressure",
		Mode: docmodel.SearchModeVector,
	}}}
	graph := fakeGraph{hits: []docmodel.SearchCandidate{{
		ChunkID: "chunk-2", DocumentID: "doc-2", SourcePath: "/tmp/other.pdf",
		Score: 0.5, Source: "neo4j", Text: "other chunk",
		Mode: docmodel.SearchModeGraph,
	}}}

	coord := NewCoordinator(keyword, vector, graph)
	query := docmodel.SearchQuery{
		Text:           "hydraulic pump",
		TopK:           5,
		MandatoryTerms: []string{"hydraulic"},
	}

	result, err := coord.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(result.Hits), result.Hits)
	}
	if result.Hits[0].ChunkID != "chunk-1" {
		t.Errorf("got chunk_id %q, want chunk-1", result.Hits[0].ChunkID)
	}
	if result.Hits[0].Mode != docmodel.SearchModeVector {
		t.Errorf("got mode %v, want vector", result.Hits[0].Mode)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	coord := NewCoordinator(fakeKeyword{}, fakeVector{}, fakeGraph{})
	_, err := coord.Search(context.Background(), docmodel.SearchQuery{Text: "   ", TopK: 5})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchAppliesMustNotTerms(t *testing.T) {
	keyword := fakeKeyword{hits: []docmodel.SearchCandidate{{
		ChunkID: "c1", Score: 1.0, Source: "opensearch", Text: "contains banned word here",
	}}}
	coord := NewCoordinator(keyword, fakeVector{}, fakeGraph{})
	query := docmodel.SearchQuery{Text: "contains", TopK: 5, MustNotTerms: []string{"banned"}}

	result, err := coord.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Hits) != 0 {
		t.Fatalf("expected must_not filter to drop the hit, got %+v", result.Hits)
	}
}

func TestSearchTruncatesToTopK(t *testing.T) {
	hits := make([]docmodel.SearchCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		hits = append(hits, docmodel.SearchCandidate{
			ChunkID: string(rune('a' + i)), Score: float64(i), Source: "opensearch", Text: "matches",
		})
	}
	coord := NewCoordinator(fakeKeyword{hits: hits}, fakeVector{}, fakeGraph{})
	query := docmodel.SearchQuery{Text: "matches", TopK: 3}

	result, err := coord.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(result.Hits))
	}
}
