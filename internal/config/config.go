// Package config provides YAML-based configuration for docsearch.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. DOCSEARCH_CONFIG environment variable
//  3. ~/.docsearch/config.yaml
//  4. ./docsearch.yaml
//
// If no file is found the system runs entirely from env vars (backwards compatible).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// OpenSearch configures the keyword index backend.
	OpenSearch OpenSearchConfig `yaml:"opensearch"`

	// Qdrant configures the vector index backend.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Neo4j configures the graph index backend.
	Neo4j Neo4jConfig `yaml:"neo4j"`

	// OCR configures the fallback LLM OCR endpoint used when native PDF
	// extraction fails.
	OCR OCRConfig `yaml:"ocr"`

	// Chunking controls chunk packing thresholds during ingestion.
	Chunking ChunkingConfig `yaml:"chunking"`

	// Search controls default search behaviour.
	Search SearchConfig `yaml:"search"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// OpenSearchConfig holds keyword backend settings.
type OpenSearchConfig struct {
	// Addresses is the list of OpenSearch/Elasticsearch endpoint URLs.
	Addresses []string `yaml:"addresses"`
	// Index is the index name holding keyword chunk documents.
	Index string `yaml:"index"`
}

// QdrantConfig holds vector backend settings.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`
	// Port is the Qdrant gRPC port.
	Port int `yaml:"port"`
	// Collection is the Qdrant collection name.
	Collection string `yaml:"collection"`
	// VectorSize is the embedding dimensionality the collection is built for.
	VectorSize int `yaml:"vector_size"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
	// TLS enables TLS for the Qdrant connection.
	TLS bool `yaml:"tls"`
}

// Neo4jConfig holds graph backend settings.
type Neo4jConfig struct {
	// Endpoint is the Neo4j HTTP transactional-Cypher base URL.
	Endpoint string `yaml:"endpoint"`
	// Database is the Neo4j database name.
	Database string `yaml:"database"`
	// Username authenticates against the Neo4j HTTP endpoint.
	Username string `yaml:"username"`
	// Password authenticates against the Neo4j HTTP endpoint. Prefer env
	// var NEO4J_PASSWORD.
	Password string `yaml:"password"`
}

// OCRConfig holds LLM OCR fallback settings.
type OCRConfig struct {
	// Endpoint is the LLM OCR HTTP endpoint. Empty disables OCR fallback.
	Endpoint string `yaml:"endpoint"`
	// APIKey authenticates against the OCR endpoint. Prefer env var
	// LLM_OCR_API_KEY.
	APIKey string `yaml:"api_key"`
}

// ChunkingConfig holds chunk packing thresholds.
type ChunkingConfig struct {
	// MaxChars is the greedy packer's target chunk size in characters.
	MaxChars int `yaml:"max_chars"`
	// OverlapChars is the overlap applied when hard-splitting an oversize
	// paragraph.
	OverlapChars int `yaml:"overlap_chars"`
	// MinChars is the minimum chunk size; packed chunks shorter than this
	// are dropped.
	MinChars int `yaml:"min_chars"`
}

// SearchConfig holds default search behaviour.
type SearchConfig struct {
	// DefaultTopK is the number of hits returned when a query doesn't
	// specify one explicitly.
	DefaultTopK int `yaml:"default_top_k"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"OPENSEARCH_ADDRESSES", func(c *Config) string { return joinAddresses(c.OpenSearch.Addresses) }},
	{"OPENSEARCH_INDEX", func(c *Config) string { return c.OpenSearch.Index }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *Config) string { return c.Qdrant.Collection }},
	{"QDRANT_VECTOR_SIZE", func(c *Config) string { return intStr(c.Qdrant.VectorSize) }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"NEO4J_ENDPOINT", func(c *Config) string { return c.Neo4j.Endpoint }},
	{"NEO4J_DATABASE", func(c *Config) string { return c.Neo4j.Database }},
	{"NEO4J_USERNAME", func(c *Config) string { return c.Neo4j.Username }},
	{"NEO4J_PASSWORD", func(c *Config) string { return c.Neo4j.Password }},
	{"LLM_OCR_ENDPOINT", func(c *Config) string { return c.OCR.Endpoint }},
	{"LLM_OCR_API_KEY", func(c *Config) string { return c.OCR.APIKey }},
	{"CHUNK_MAX_CHARS", func(c *Config) string { return intStr(c.Chunking.MaxChars) }},
	{"CHUNK_OVERLAP_CHARS", func(c *Config) string { return intStr(c.Chunking.OverlapChars) }},
	{"CHUNK_MIN_CHARS", func(c *Config) string { return intStr(c.Chunking.MinChars) }},
	{"SEARCH_DEFAULT_TOP_K", func(c *Config) string { return intStr(c.Search.DefaultTopK) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" || yamlVal == "false" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("DOCSEARCH_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".docsearch", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("docsearch.yaml"); err == nil {
		return "docsearch.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}

// joinAddresses joins a list of backend addresses into a single
// comma-separated env var value.
func joinAddresses(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	out := addrs[0]
	for _, a := range addrs[1:] {
		out += "," + a
	}
	return out
}
