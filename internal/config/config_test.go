package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
opensearch:
  addresses:
    - http://opensearch.internal:9200
  index: docsearch-chunks
qdrant:
  host: qdrant.internal
  port: 6334
  collection: docsearch-chunks
  vector_size: 128
neo4j:
  endpoint: http://neo4j.internal:7474
  database: neo4j
  username: neo4j
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"OPENSEARCH_ADDRESSES", "OPENSEARCH_INDEX",
		"QDRANT_HOST", "QDRANT_PORT", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
		"NEO4J_ENDPOINT", "NEO4J_DATABASE", "NEO4J_USERNAME",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"OPENSEARCH_ADDRESSES": "http://opensearch.internal:9200",
		"OPENSEARCH_INDEX":     "docsearch-chunks",
		"QDRANT_HOST":          "qdrant.internal",
		"QDRANT_PORT":          "6334",
		"QDRANT_COLLECTION":    "docsearch-chunks",
		"QDRANT_VECTOR_SIZE":   "128",
		"NEO4J_ENDPOINT":       "http://neo4j.internal:7474",
		"NEO4J_DATABASE":       "neo4j",
		"NEO4J_USERNAME":       "neo4j",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
qdrant:
  host: qdrant.internal
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("QDRANT_HOST", "qdrant.override")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("QDRANT_HOST"); got != "qdrant.override" {
		t.Errorf("QDRANT_HOST: expected env override %q, got %q", "qdrant.override", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestJoinAddresses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"http://a:9200"}, "http://a:9200"},
		{[]string{"http://a:9200", "http://b:9200"}, "http://a:9200,http://b:9200"},
	}
	for _, tt := range tests {
		if got := joinAddresses(tt.in); got != tt.want {
			t.Errorf("joinAddresses(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
