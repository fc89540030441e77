package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

func TestDiscoverPdfFilesIsRecursive(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.PDF"), []byte("%PDF-1.4\n%fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "b.pdf"), []byte("%PDF-1.4\n%fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := DiscoverPdfFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
}

func TestDigestFileIsReproducible(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := DigestFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := DigestFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("checksum not reproducible: %q vs %q", first, second)
	}
}

func TestGenerateDocumentIDIsStable(t *testing.T) {
	a := GenerateDocumentID("/tmp/x.pdf")
	b := GenerateDocumentID("/tmp/x.pdf")
	c := GenerateDocumentID("/tmp/y.pdf")
	if a != b {
		t.Errorf("same path produced different ids")
	}
	if a == c {
		t.Errorf("different paths produced the same id")
	}
}

func TestIngestionFailsWithoutPdfs(t *testing.T) {
	dir := t.TempDir()
	_, err := IngestFolderChunksBestEffort(dir, docmodel.DefaultIngestionOptions(), nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for folder with no PDFs")
	}
}

func TestBestEffortSkipsUnreadablePdfs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "unreadable.pdf"), []byte("%PDF-1.4\n%broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := IngestFolderChunksBestEffort(dir, docmodel.DefaultIngestionOptions(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(report.Chunks))
	}
	if len(report.SkippedFiles) != 1 {
		t.Fatalf("expected 1 skipped file, got %d", len(report.SkippedFiles))
	}
	if filepath.Base(report.SkippedFiles[0].Path) != "unreadable.pdf" {
		t.Errorf("got %q", report.SkippedFiles[0].Path)
	}
}
