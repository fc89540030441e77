// Package opensearch implements the KeywordIndex capability contract against
// an Elasticsearch/OpenSearch-compatible `_bulk`/`_search` endpoint, ported
// from the original implementation's stores::opensearch module.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// Store is a KeywordIndex backed by an Elasticsearch-API-compatible cluster.
type Store struct {
	client    *elasticsearch.Client
	indexName string
}

// New builds a Store against the given endpoint addresses and index name.
func New(addresses []string, indexName string) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, docmodel.NewSearchRequest("failed to build elasticsearch client: " + err.Error())
	}
	return &Store{client: client, indexName: indexName}, nil
}

// EnsureIndex creates the index with its fixed mapping if it does not
// already exist. Ported from ensure_index.
func (s *Store) EnsureIndex(ctx context.Context) error {
	existsResp, err := s.client.Indices.Exists([]string{s.indexName}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return docmodel.NewSearchHTTP(err)
	}
	defer existsResp.Body.Close()

	if existsResp.StatusCode == 200 {
		return nil
	}
	if existsResp.StatusCode != 404 {
		return docmodel.NewSearchBackendResponse("opensearch", existsResp.Status())
	}

	mapping := strings.NewReader(`{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0,
			"analysis": {
				"analyzer": {
					"standard_english": {"type": "standard"}
				}
			}
		},
		"mappings": {
			"properties": {
				"text_raw": {"type": "text", "analyzer": "standard_english"},
				"text_normalized": {"type": "text", "analyzer": "standard_english"},
				"section_path": {"type": "keyword"},
				"document_id": {"type": "keyword"},
				"source_path": {"type": "keyword"},
				"clause_id": {"type": "keyword"},
				"standard": {"type": "keyword"},
				"version": {"type": "keyword"},
				"page_start": {"type": "integer"},
				"page_end": {"type": "integer"},
				"chunk_index": {"type": "long"}
			}
		}
	}`)

	createResp, err := s.client.Indices.Create(s.indexName,
		s.client.Indices.Create.WithBody(mapping),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return docmodel.NewSearchHTTP(err)
	}
	defer createResp.Body.Close()

	if createResp.IsError() {
		return docmodel.NewSearchRequest("open-search index setup failed with " + createResp.Status())
	}
	return nil
}

type keywordDoc struct {
	DocumentID     string   `json:"document_id"`
	SourcePath     string   `json:"source_path"`
	SectionPath    string   `json:"section_path"`
	ClauseID       string   `json:"clause_id,omitempty"`
	PageStart      uint32   `json:"page_start"`
	PageEnd        uint32   `json:"page_end"`
	ChunkIndex     uint64   `json:"chunk_index"`
	TextRaw        string   `json:"text_raw"`
	TextNormalized string   `json:"text_normalized"`
	Kind           string   `json:"kind"`
	OCRConfidence  *float32 `json:"ocr_confidence,omitempty"`
	References     []string `json:"references"`
	Units          []string `json:"units"`
	Version        string   `json:"version,omitempty"`
	Standard       string   `json:"standard,omitempty"`
}

type bulkAction struct {
	Index bulkActionIndex `json:"index"`
}

type bulkActionIndex struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// IndexKeywordChunks bulk-indexes chunks via the NDJSON `_bulk` endpoint.
// Ported from index_keyword_chunks.
func (s *Store) IndexKeywordChunks(ctx context.Context, chunks []docmodel.PdfChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var payload bytes.Buffer
	for _, chunk := range chunks {
		action := bulkAction{Index: bulkActionIndex{Index: s.indexName, ID: chunk.ChunkID}}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return docmodel.NewSearchSerialization(err)
		}
		payload.Write(actionLine)
		payload.WriteByte('\n')

		doc := keywordDoc{
			DocumentID:     chunk.DocumentID,
			SourcePath:     chunk.SourcePath,
			SectionPath:    chunk.SectionPath,
			ClauseID:       chunk.ClauseID,
			PageStart:      chunk.PageStart,
			PageEnd:        chunk.PageEnd,
			ChunkIndex:     chunk.ChunkIndex,
			TextRaw:        chunk.TextRaw,
			TextNormalized: chunk.TextNormalized,
			Kind:           chunk.Kind.String(),
			OCRConfidence:  chunk.OCRConfidence,
			References:     chunk.References,
			Units:          chunk.Units,
			Version:        chunk.Version,
			Standard:       chunk.Standard,
		}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return docmodel.NewSearchSerialization(err)
		}
		payload.Write(docLine)
		payload.WriteByte('\n')
	}

	req := esapi.BulkRequest{Body: bytes.NewReader(payload.Bytes())}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return docmodel.NewSearchHTTP(err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return docmodel.NewSearchBackendResponse("opensearch", resp.Status())
	}
	return nil
}

// SearchKeyword runs a multi_match query over text_raw/text_normalized/
// section_path with term filters derived from query.Filters. Ported from
// search_keyword.
func (s *Store) SearchKeyword(ctx context.Context, query docmodel.SearchQuery) ([]docmodel.SearchCandidate, error) {
	body := map[string]any{
		"size": query.TopK,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":  query.Text,
							"fields": []string{"text_raw", "text_normalized", "section_path"},
						},
					},
				},
				"filter": buildFilters(query.Filters),
			},
		},
		"highlight": map[string]any{
			"fields": map[string]any{"text_raw": map[string]any{}},
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, docmodel.NewSearchSerialization(err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.indexName},
		Body:  bytes.NewReader(encoded),
	}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, docmodel.NewSearchHTTP(err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, docmodel.NewSearchBackendResponse("opensearch", resp.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, docmodel.NewSearchSerialization(err)
	}

	result := make([]docmodel.SearchCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		result = append(result, docmodel.SearchCandidate{
			ChunkID:    hit.ID,
			DocumentID: hit.Source.DocumentID,
			SourcePath: hit.Source.SourcePath,
			Score:      hit.Score,
			Source:     "opensearch",
			Text:       hit.Source.TextRaw,
			Mode:       docmodel.SearchModeKeyword,
		})
	}

	return result, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Score  float64    `json:"_score"`
			Source keywordDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildFilters(filters docmodel.QueryFilters) []map[string]any {
	predicates := make([]map[string]any, 0, 4)
	if filters.Standard != "" {
		predicates = append(predicates, map[string]any{"term": map[string]any{"standard": filters.Standard}})
	}
	if filters.Version != "" {
		predicates = append(predicates, map[string]any{"term": map[string]any{"version": filters.Version}})
	}
	if filters.SectionPath != "" {
		predicates = append(predicates, map[string]any{"term": map[string]any{"section_path": filters.SectionPath}})
	}
	if filters.ClauseID != "" {
		predicates = append(predicates, map[string]any{"term": map[string]any{"clause_id": filters.ClauseID}})
	}
	return predicates
}
