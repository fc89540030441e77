// Package neo4j implements the GraphIndex capability contract against the
// Neo4j HTTP transactional-Cypher endpoint, ported from the original
// implementation's stores::neo4j module. A Bolt driver is deliberately not
// used here; see DESIGN.md for the justification.
package neo4j

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// Store is a GraphIndex backed by Neo4j's transactional HTTP endpoint.
type Store struct {
	Endpoint string
	Database string
	Username string
	Password string
	client   *http.Client
}

// New builds a Store against the given Neo4j HTTP endpoint.
func New(endpoint, database, username, password string) *Store {
	return &Store{
		Endpoint: endpoint,
		Database: database,
		Username: username,
		Password: password,
		client:   http.DefaultClient,
	}
}

func (s *Store) txURL() string {
	return fmt.Sprintf("%s/db/%s/tx/commit", s.Endpoint, s.Database)
}

type cypherStatement struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters"`
}

type cypherRequest struct {
	Statements []cypherStatement `json:"statements"`
}

func (s *Store) postCypher(ctx context.Context, stmt cypherStatement) (*http.Response, error) {
	body, err := json.Marshal(cypherRequest{Statements: []cypherStatement{stmt}})
	if err != nil {
		return nil, docmodel.NewSearchSerialization(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.txURL(), bytes.NewReader(body))
	if err != nil {
		return nil, docmodel.NewSearchRequest(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.Username, s.Password)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, docmodel.NewSearchHTTP(err)
	}
	return resp, nil
}

const syncCypher = `
	UNWIND $rows AS row
	MERGE (doc:Document {document_id: row.doc_id})
	MERGE (c:Chunk {chunk_id: row.chunk_id})
	SET c.source_path = row.source,
		doc.source_path = row.source,
		c.section_path = row.section_path,
		c.clause_id = row.clause_id,
		c.text = row.text
	MERGE (doc)-[:HAS_CHUNK]->(c)
	RETURN count(c) AS chunk_count;
`

// SyncGraphRelations upserts Document/Chunk nodes and HAS_CHUNK edges for
// chunks. Ported from sync_graph_relations.
func (s *Store) SyncGraphRelations(ctx context.Context, chunks []docmodel.PdfChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(chunks))
	for _, chunk := range chunks {
		rows = append(rows, map[string]any{
			"doc_id":       chunk.DocumentID,
			"chunk_id":     chunk.ChunkID,
			"source":       chunk.SourcePath,
			"section_path": chunk.SectionPath,
			"clause_id":    chunk.ClauseID,
			"text":         chunk.TextRaw,
		})
	}

	resp, err := s.postCypher(ctx, cypherStatement{
		Statement:  syncCypher,
		Parameters: map[string]any{"rows": rows},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return docmodel.NewSearchBackendResponse("neo4j", resp.Status)
	}
	return nil
}

const relatedCypher = `
	MATCH (c:Chunk)-[:REFERENCES]->(ref:Clause)
	WHERE c.chunk_id IN $chunk_ids
	OPTIONAL MATCH (ref)-[:CITED_BY]->(related:Clause)
	MATCH (d:Document)-[:HAS_CHUNK]->(rchunk:Chunk)
	WHERE rchunk.chunk_id = related.clause_id OR rchunk.section_path = related.section
	RETURN DISTINCT c.chunk_id AS from_chunk_id,
					rchunk.chunk_id AS related_chunk_id,
					coalesce(rchunk.text, '') AS text,
					rchunk.section_path AS section,
					rchunk.source_path AS source_path,
					d.document_id AS document_id
	LIMIT 20;
`

// RelatedChunks traverses REFERENCES/CITED_BY edges starting from chunkIDs
// and returns related chunks with a fixed score of 0.6. Ported from
// related_chunks.
func (s *Store) RelatedChunks(ctx context.Context, chunkIDs []string) ([]docmodel.SearchCandidate, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	resp, err := s.postCypher(ctx, cypherStatement{
		Statement:  relatedCypher,
		Parameters: map[string]any{"chunk_ids": chunkIDs},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, docmodel.NewSearchBackendResponse("neo4j", resp.Status)
	}

	var payload txResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, docmodel.NewSearchSerialization(err)
	}

	hits := make([]docmodel.SearchCandidate, 0)
	for _, row := range extractRows(payload) {
		if len(row) < 6 {
			continue
		}
		chunkID, _ := row[1].(string)
		text, _ := row[2].(string)
		sourcePath, _ := row[4].(string)
		documentID, _ := row[5].(string)

		hits = append(hits, docmodel.SearchCandidate{
			ChunkID:    chunkID,
			DocumentID: documentID,
			SourcePath: sourcePath,
			Score:      0.6,
			Source:     "neo4j",
			Text:       text,
			Mode:       docmodel.SearchModeGraph,
		})
	}

	return hits, nil
}

// txResponse mirrors the shape returned by Neo4j's transactional HTTP
// endpoint: either results[].data[].row (per-statement results) or a flat
// data[] array.
type txResponse struct {
	Results []struct {
		Data []struct {
			Row []any `json:"row"`
		} `json:"data"`
	} `json:"results"`
	Data []struct {
		Row []any `json:"row"`
	} `json:"data"`
}

// extractRows returns every row of values from a txResponse, preferring the
// nested results[].data[].row shape and falling back to a flat data[] array.
// The original implementation reaches for this same fallback via
// Value::pointer, but with path strings missing their leading slash — a
// latent bug that always resolves to None. This implementation performs the
// traversal correctly instead of reproducing that bug.
func extractRows(payload txResponse) [][]any {
	if len(payload.Results) > 0 {
		rows := make([][]any, 0)
		for _, result := range payload.Results {
			for _, entry := range result.Data {
				rows = append(rows, entry.Row)
			}
		}
		return rows
	}

	rows := make([][]any, 0, len(payload.Data))
	for _, entry := range payload.Data {
		rows = append(rows, entry.Row)
	}
	return rows
}
