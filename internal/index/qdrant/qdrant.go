// Package qdrant implements the VectorIndex capability contract against a
// Qdrant collection, generalized from the teacher's internal/rag.QdrantStore
// (gRPC client setup, collection-exists preflight) to PdfChunk payloads and
// the vector-size validation from the original implementation's
// stores::qdrant module.
package qdrant

import (
	"context"
	"fmt"

	qdrantgo "github.com/qdrant/go-client/qdrant"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// Config holds connection parameters for a Qdrant collection.
type Config struct {
	Host       string
	Port       int
	Collection string
	VectorSize uint64
	APIKey     string
	UseTLS     bool
}

// Store is a VectorIndex backed by a Qdrant collection.
type Store struct {
	client     *qdrantgo.Client
	collection string
	vectorSize uint64
}

// New creates a Store, creating the backing collection if it does not yet
// exist. Mirrors the teacher's NewQdrantStore/ensureCollection. An existing
// collection is used as is; its vector size is not compared with
// cfg.VectorSize.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrantgo.NewClient(&qdrantgo.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, docmodel.NewSearchRequest(fmt.Sprintf("qdrant: failed to create client: %v", err))
	}

	store := &Store{client: client, collection: cfg.Collection, vectorSize: cfg.VectorSize}
	if err := store.ensureCollection(ctx, cfg.VectorSize); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return docmodel.NewSearchRequest(fmt.Sprintf("qdrant: failed to check collection existence: %v", err))
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrantgo.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrantgo.NewVectorsConfig(&qdrantgo.VectorParams{
			Size:     vectorSize,
			Distance: qdrantgo.Distance_Cosine,
		}),
	})
	if err != nil {
		return docmodel.NewSearchRequest(fmt.Sprintf("qdrant: failed to create collection %q: %v", s.collection, err))
	}
	return nil
}

// EnsureCollection validates that vectorSize matches the configured
// collection dimension before a batch write, ported from
// QdrantStore::ensure_collection (a pure dimension check, distinct from
// New's create-if-missing preflight).
func (s *Store) EnsureCollection(vectorSize uint64) error {
	if s.vectorSize != vectorSize {
		return docmodel.NewSearchRequest(fmt.Sprintf(
			"configured vector size %d does not match requested %d", s.vectorSize, vectorSize))
	}
	return nil
}

// IndexVectorChunks upserts one point per chunk, keyed by chunk_index (not
// chunk_id) exactly as the original implementation does, with dimension
// validation against both the chunk count and the collection's vector size.
func (s *Store) IndexVectorChunks(ctx context.Context, chunks []docmodel.PdfChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return docmodel.NewSearchRequest(fmt.Sprintf(
			"embedding count %d doesn't match chunk count %d", len(embeddings), len(chunks)))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrantgo.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		vec := embeddings[i]
		if uint64(len(vec)) != s.vectorSize {
			return docmodel.NewSearchRequest(fmt.Sprintf("embedding dimension %d != %d", len(vec), s.vectorSize))
		}

		payload := map[string]any{
			"document_id":  chunk.DocumentID,
			"source_path":  chunk.SourcePath,
			"section_path": chunk.SectionPath,
			"clause_id":    chunk.ClauseID,
			"page_start":   chunk.PageStart,
			"page_end":     chunk.PageEnd,
			"chunk_index":  chunk.ChunkIndex,
			"text_raw":     chunk.TextRaw,
			"kind":         chunk.Kind.String(),
			"references":   chunk.References,
			"version":      chunk.Version,
			"standard":     chunk.Standard,
		}
		if chunk.OCRConfidence != nil {
			payload["ocr_confidence"] = *chunk.OCRConfidence
		}

		points = append(points, &qdrantgo.PointStruct{
			Id:      qdrantgo.NewIDNum(chunk.ChunkIndex),
			Vectors: qdrantgo.NewVectors(vec...),
			Payload: qdrantgo.NewValueMap(payload),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrantgo.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return docmodel.NewSearchBackendResponse("qdrant", err.Error())
	}
	return nil
}

// SearchVector queries the collection with the embedded query vector.
// The chunk_id of each hit is the stringified numeric point id (the
// chunk's chunk_index), matching the original adapter's id scheme exactly
// — this adapter does not carry the SHA-256 chunk_id as the point id.
func (s *Store) SearchVector(ctx context.Context, queryVector []float32, query docmodel.SearchQuery) ([]docmodel.SearchCandidate, error) {
	if uint64(len(queryVector)) != s.vectorSize {
		return nil, docmodel.NewSearchRequest(fmt.Sprintf("query vector dim %d is not %d", len(queryVector), s.vectorSize))
	}

	limit := uint64(query.TopK)
	results, err := s.client.Query(ctx, &qdrantgo.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrantgo.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrantgo.NewWithPayload(true),
	})
	if err != nil {
		return nil, docmodel.NewSearchBackendResponse("qdrant", err.Error())
	}

	out := make([]docmodel.SearchCandidate, 0, len(results))
	for _, hit := range results {
		id := fmt.Sprintf("%d", hit.GetId().GetNum())

		var sourcePath, documentID, textRaw string
		if p := hit.GetPayload(); p != nil {
			if v, ok := p["source_path"]; ok {
				sourcePath = v.GetStringValue()
			}
			if v, ok := p["document_id"]; ok {
				documentID = v.GetStringValue()
			}
			if v, ok := p["text_raw"]; ok {
				textRaw = v.GetStringValue()
			}
		}

		out = append(out, docmodel.SearchCandidate{
			ChunkID:    id,
			DocumentID: documentID,
			SourcePath: sourcePath,
			Score:      float64(hit.GetScore()),
			Source:     "qdrant",
			Text:       textRaw,
			Mode:       docmodel.SearchModeVector,
		})
	}

	return out, nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}
