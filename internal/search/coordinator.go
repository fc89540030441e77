// Package search implements the fused retrieval coordinator: concurrent
// keyword + vector fan-out, reciprocal-rank-fusion merging, a graph
// expansion pass over the fused candidate set, and mandatory/forbidden term
// post-filtering. Ported from the original implementation's orchestrator
// module.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpussearch/docsearch/internal/docmodel"
	"github.com/corpussearch/docsearch/internal/embedding"
	"github.com/corpussearch/docsearch/internal/index"
	"github.com/corpussearch/docsearch/internal/logging"
	"github.com/corpussearch/docsearch/internal/metrics"
)

const (
	keywordWeight = 0.55
	vectorWeight  = 0.35
	graphWeight   = 0.10
	graphTopK     = 20
)

// Coordinator fuses hits from a keyword, vector, and graph backend into one
// ranked result set.
type Coordinator struct {
	Keyword  index.KeywordIndex
	Vector   index.VectorIndex
	Graph    index.GraphIndex
	Embedder embedding.Embedder

	// Metrics, if non-nil, records per-backend fan-out latency and the
	// number of candidates each backend contributed to the RRF merge.
	Metrics *metrics.Metrics
}

// NewCoordinator builds a Coordinator with the default character n-gram
// embedder, matching the original's SearchCoordinator::new.
func NewCoordinator(keyword index.KeywordIndex, vector index.VectorIndex, graph index.GraphIndex) Coordinator {
	return Coordinator{
		Keyword:  keyword,
		Vector:   vector,
		Graph:    graph,
		Embedder: embedding.NewCharacterNgramEmbedder(),
	}
}

// Search executes the fused retrieval pipeline for query. Ported from
// SearchCoordinator::search.
func (c Coordinator) Search(ctx context.Context, query docmodel.SearchQuery) (docmodel.SearchResult, error) {
	if strings.TrimSpace(query.Text) == "" {
		return docmodel.SearchResult{}, docmodel.NewSearchRequest("query is empty")
	}

	requiredTerms := query.AllTermsRequired()
	queryVector := c.Embedder.Embed(query.Text)

	log := logging.FromContext(ctx)

	var keywordHits, vectorHits []docmodel.SearchCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := time.Now()
		hits, err := c.Keyword.SearchKeyword(gctx, query)
		c.observeBackend("opensearch", started, len(hits))
		if err != nil {
			return err
		}
		keywordHits = hits
		return nil
	})
	g.Go(func() error {
		started := time.Now()
		hits, err := c.Vector.SearchVector(gctx, queryVector, query)
		c.observeBackend("qdrant", started, len(hits))
		if err != nil {
			return err
		}
		vectorHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn("search: backend fan-out failed", slog.Any("error", err))
		return docmodel.SearchResult{}, err
	}

	scored := make(map[string]*scoredHit)
	applyRRF(scored, keywordHits, keywordWeight)
	applyRRF(scored, vectorHits, vectorWeight)

	candidateIDs := make([]string, 0, len(scored))
	for id := range scored {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Strings(candidateIDs)

	graphStarted := time.Now()
	graphHits, err := c.Graph.RelatedChunks(ctx, candidateIDs)
	c.observeBackend("neo4j", graphStarted, len(graphHits))
	if err != nil {
		log.Warn("search: graph backend failed, demoting to no hits",
			slog.String("backend", "neo4j"), slog.Any("error", err))
		graphHits = nil
	}
	if len(graphHits) > 0 {
		applyRRF(scored, graphHits, graphWeight)
	}

	finalHits := make([]*scoredHit, 0, len(scored))
	for _, hit := range scored {
		if !termCheck(hit.chunkText, requiredTerms) {
			continue
		}
		if containsAnyTerm(hit.chunkText, query.MustNotTerms) {
			continue
		}
		finalHits = append(finalHits, hit)
	}

	sort.Slice(finalHits, func(i, j int) bool {
		return finalHits[i].totalScore > finalHits[j].totalScore
	})

	graphWeightUsed := 0.0
	if len(graphHits) > 0 {
		graphWeightUsed = graphWeight
	}
	modeScores := []docmodel.ModeScore{
		{Mode: "keyword", Count: query.TopK, Weight: keywordWeight},
		{Mode: "vector", Count: query.TopK, Weight: vectorWeight},
		{Mode: "graph", Count: graphTopK, Weight: graphWeightUsed},
	}

	topK := query.TopK
	if topK > len(finalHits) {
		topK = len(finalHits)
	}

	hits := make([]docmodel.SearchCandidate, 0, topK)
	for _, item := range finalHits[:topK] {
		hits = append(hits, docmodel.SearchCandidate{
			ChunkID:    item.chunkID,
			DocumentID: item.documentID,
			SourcePath: item.sourcePath,
			Score:      item.totalScore,
			Source:     item.source,
			Chunk:      item.chunk,
			Text:       item.chunkText,
			Mode:       dominantMode(item.modes),
		})
	}

	return docmodel.SearchResult{
		Query:      query.Text,
		ModeScores: modeScores,
		Hits:       hits,
	}, nil
}

// observeBackend records backend's fan-out latency and the number of
// candidates it contributed, when Metrics is configured. A no-op otherwise.
func (c Coordinator) observeBackend(backend string, started time.Time, candidateCount int) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.BackendSearchDurationSeconds.WithLabelValues(backend).Observe(time.Since(started).Seconds())
	c.Metrics.FusedCandidatesTotal.WithLabelValues(backend).Observe(float64(candidateCount))
}

type scoredHit struct {
	chunkID    string
	documentID string
	sourcePath string
	chunkText  string
	totalScore float64
	source     string
	chunk      *docmodel.PdfChunk
	modes      []docmodel.SearchMode
}

const rrfK = 60.0

// applyRRF merges hits into target using reciprocal rank fusion, weighted
// by weight, following the original's apply_rrf merge rules exactly: first
// sighting of a chunk_id seeds its text/document_id/source_path, the source
// tag is comma-appended only if not already a substring, and total_score
// accumulates weight*rankComponent plus a small additive backend-score
// term.
func applyRRF(target map[string]*scoredHit, hits []docmodel.SearchCandidate, weight float64) {
	for position, hit := range hits {
		rankComponent := 1.0 / (rrfK + float64(position+1))
		mode := modeFromSource(hit.Source)

		entry, ok := target[hit.ChunkID]
		if !ok {
			entry = &scoredHit{
				chunkID:    hit.ChunkID,
				documentID: hit.DocumentID,
				sourcePath: hit.SourcePath,
				source:     hit.Source,
				chunk:      hit.Chunk,
			}
			target[hit.ChunkID] = entry
		}

		if entry.chunkText == "" {
			entry.chunkText = hit.Text
		}

		if !strings.Contains(entry.source, hit.Source) {
			if entry.source == "" {
				entry.source = hit.Source
			} else {
				entry.source = entry.source + "," + hit.Source
			}
		}
		if entry.documentID == "" {
			entry.documentID = hit.DocumentID
		}
		if entry.sourcePath == "" {
			entry.sourcePath = hit.SourcePath
		}

		entry.totalScore += (weight * rankComponent) + (hit.Score * 0.01)

		if mode != nil {
			found := false
			for _, m := range entry.modes {
				if m == *mode {
					found = true
					break
				}
			}
			if !found {
				entry.modes = append(entry.modes, *mode)
			}
		}
	}
}

func modeFromSource(source string) *docmodel.SearchMode {
	var m docmodel.SearchMode
	switch source {
	case "opensearch":
		m = docmodel.SearchModeKeyword
	case "qdrant":
		m = docmodel.SearchModeVector
	case "neo4j":
		m = docmodel.SearchModeGraph
	default:
		return nil
	}
	return &m
}

// dominantMode prefers Graph, then Vector, then Keyword, defaulting to
// Keyword for a hit with no recognized source tag.
func dominantMode(modes []docmodel.SearchMode) docmodel.SearchMode {
	has := func(m docmodel.SearchMode) bool {
		for _, x := range modes {
			if x == m {
				return true
			}
		}
		return false
	}
	if has(docmodel.SearchModeGraph) {
		return docmodel.SearchModeGraph
	}
	if has(docmodel.SearchModeVector) {
		return docmodel.SearchModeVector
	}
	return docmodel.SearchModeKeyword
}

func termCheck(text string, requiredTerms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range requiredTerms {
		if !strings.Contains(lowered, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

func containsAnyTerm(text string, blocked []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range blocked {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
