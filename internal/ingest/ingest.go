// Package ingest drives folder-level PDF discovery and chunk production,
// threading a single global chunk_index cursor across every file in sorted
// order, so that chunk IDs are deterministic for a fixed set of files;
// adding or removing a file changes the IDs of the chunks that follow it.
// Ported from the original implementation's ingest module.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corpussearch/docsearch/internal/chunking"
	"github.com/corpussearch/docsearch/internal/docmodel"
	"github.com/corpussearch/docsearch/internal/extract"
	"github.com/corpussearch/docsearch/internal/metrics"
)

// DiscoverPdfFiles walks folder recursively and returns every regular file
// whose extension case-insensitively matches ".pdf", sorted for
// deterministic ingestion order.
func DiscoverPdfFiles(folder string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(folder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, docmodel.NewIngestIO(err)
	}
	sort.Strings(files)
	return files, nil
}

// DigestFile returns the SHA-256 hex digest of path's contents.
func DigestFile(path string) (string, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", docmodel.NewIngestIO(err)
	}
	h := sha256.Sum256(bytes)
	return hex.EncodeToString(h[:]), nil
}

// GenerateDocumentID hashes the absolute path string, giving every document
// a stable, content-addressed identifier independent of ingestion order.
func GenerateDocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	h := sha256.Sum256([]byte(path))
	return hex.EncodeToString(h[:])
}

// BuildDocumentFingerprint computes the checksum and identifiers for path.
func BuildDocumentFingerprint(path string, now time.Time) (docmodel.DocumentFingerprint, error) {
	checksum, err := DigestFile(path)
	if err != nil {
		return docmodel.DocumentFingerprint{}, err
	}

	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return docmodel.DocumentFingerprint{}, docmodel.NewIngestMissingFileName("path missing filename: " + path)
	}

	return docmodel.DocumentFingerprint{
		DocumentID:    GenerateDocumentID(path),
		DocumentTitle: name,
		SourcePath:    path,
		Checksum:      checksum,
		IngestedAt:    now,
	}, nil
}

// SkippedPdf records a file that failed during best-effort ingestion.
type SkippedPdf struct {
	Path   string
	Reason string
}

// IngestionReport is the outcome of a best-effort folder ingestion.
type IngestionReport struct {
	Chunks       []docmodel.PdfChunk
	SkippedFiles []SkippedPdf
}

// IngestFolderChunksBestEffort discovers every PDF under folder and builds
// chunks for each, sequentially, threading one chunk_index cursor across
// the whole folder. A file that fails to extract or chunk is recorded in
// SkippedFiles rather than aborting the run; an empty folder is an error.
// log receives a warn line per skipped file; if nil, slog.Default() is used.
// m, if non-nil, is incremented with per-document, per-chunk, and
// per-skip counts as the run progresses. Ported from
// ingest_folder_chunks_best_effort.
func IngestFolderChunksBestEffort(folder string, options docmodel.IngestionOptions, ocr *extract.OcrClient, log *slog.Logger, m *metrics.Metrics) (IngestionReport, error) {
	if log == nil {
		log = slog.Default()
	}

	files, err := DiscoverPdfFiles(folder)
	if err != nil {
		return IngestionReport{}, err
	}
	if len(files) == 0 {
		return IngestionReport{}, docmodel.NewIngestInvalidArgument("no pdf files found in " + folder)
	}

	var result []docmodel.PdfChunk
	var skipped []SkippedPdf
	var cursor uint64

	for _, path := range files {
		chunks, next, err := ingestOneFile(path, options, ocr, cursor)
		if err != nil {
			reason := err.Error()
			skipped = append(skipped, SkippedPdf{Path: path, Reason: reason})
			log.Warn("ingest: skipping pdf", slog.String("path", path), slog.String("reason", reason))
			if m != nil {
				m.SkippedFilesTotal.WithLabelValues(reason).Inc()
			}
			continue
		}
		cursor = next
		result = append(result, chunks...)
		if m != nil {
			m.DocumentsIngestedTotal.Inc()
			m.ChunksProducedTotal.Add(float64(len(chunks)))
		}
	}

	return IngestionReport{Chunks: result, SkippedFiles: skipped}, nil
}

func ingestOneFile(path string, options docmodel.IngestionOptions, ocr *extract.OcrClient, cursor uint64) ([]docmodel.PdfChunk, uint64, error) {
	fingerprint, err := BuildDocumentFingerprint(path, time.Now())
	if err != nil {
		return nil, cursor, err
	}

	pages, err := extract.ExtractPageTexts(path, ocr)
	if err != nil {
		return nil, cursor, err
	}

	var fileChunks []docmodel.PdfChunk
	for _, page := range pages {
		normalized := chunking.NormalizeWhitespace(page.Text)
		pageChunks, next, err := chunking.BuildChunks(fingerprint, page.Number, "unassigned", "", normalized, options, cursor)
		if err != nil {
			return nil, cursor, err
		}
		cursor = next
		fileChunks = append(fileChunks, pageChunks...)
	}

	return fileChunks, cursor, nil
}
