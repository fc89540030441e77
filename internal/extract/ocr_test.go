package extract

import (
	"os"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestPayloadToPagesWithPagesField(t *testing.T) {
	resp := llmOcrResponse{
		Pages: []llmOcrPage{
			{Page: intPtr(2), Text: strPtr("  ")},
			{Page: intPtr(3), Text: strPtr("Page 3")},
		},
	}
	pages, err := payloadToPages(resp, "x.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].Number != 3 || pages[0].Text != "Page 3" {
		t.Errorf("got %+v", pages[0])
	}
}

func TestPayloadToPagesFallbackFormFeed(t *testing.T) {
	resp := llmOcrResponse{Text: strPtr("FirstSecond\n")}
	pages, err := payloadToPages(resp, "x.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[0].Text != "First" {
		t.Errorf("page 0: got %+v", pages[0])
	}
	if pages[1].Number != 2 || pages[1].Text != "Second" {
		t.Errorf("page 1: got %+v", pages[1])
	}
}

func TestPayloadToPagesEmpty(t *testing.T) {
	_, err := payloadToPages(llmOcrResponse{}, "x.pdf")
	if err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestParseOcrEndpointConfig(t *testing.T) {
	os.Unsetenv("LLM_OCR_ENDPOINT")
	os.Unsetenv("LLM_OCR_API_KEY")
	if _, ok := ParseOcrEndpointConfig(); ok {
		t.Fatal("expected no config when env unset")
	}

	t.Setenv("LLM_OCR_ENDPOINT", " https://ocr.example.com/extract ")
	t.Setenv("LLM_OCR_API_KEY", "secret")
	cfg, ok := ParseOcrEndpointConfig()
	if !ok {
		t.Fatal("expected config when env set")
	}
	if cfg.Endpoint != "https://ocr.example.com/extract" {
		t.Errorf("endpoint not trimmed: %q", cfg.Endpoint)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("got api key %q", cfg.APIKey)
	}
}
