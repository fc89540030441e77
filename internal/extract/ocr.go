package extract

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// OcrEndpointConfig names the configured multimodal OCR backend.
type OcrEndpointConfig struct {
	Endpoint string
	APIKey   string
}

// ParseOcrEndpointConfig reads LLM_OCR_ENDPOINT / LLM_OCR_API_KEY from the
// environment. Returns false if no endpoint is configured.
func ParseOcrEndpointConfig() (OcrEndpointConfig, bool) {
	endpoint := strings.TrimSpace(os.Getenv("LLM_OCR_ENDPOINT"))
	if endpoint == "" {
		return OcrEndpointConfig{}, false
	}
	apiKey := strings.TrimSpace(os.Getenv("LLM_OCR_API_KEY"))
	return OcrEndpointConfig{Endpoint: endpoint, APIKey: apiKey}, true
}

// OcrClient performs a multimodal OCR request against a configured endpoint.
type OcrClient struct {
	Config     OcrEndpointConfig
	HTTPClient *http.Client
}

// NewOcrClient builds an OcrClient from the environment, returning nil if no
// endpoint is configured (callers should treat a nil client as "OCR
// unavailable" and propagate the original parse error).
func NewOcrClient(timeout time.Duration) *OcrClient {
	cfg, ok := ParseOcrEndpointConfig()
	if !ok {
		return nil
	}
	return &OcrClient{
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type llmOcrRequest struct {
	PdfBase64  string `json:"pdf_base64"`
	SourcePath string `json:"source_path"`
}

type llmOcrResponse struct {
	Pages []llmOcrPage `json:"pages"`
	Text  *string      `json:"text"`
}

type llmOcrPage struct {
	Page *int    `json:"page"`
	Text *string `json:"text"`
}

// ExtractPages POSTs the PDF's base64 content to the configured endpoint and
// converts the response into page text. Ported from
// extract_with_llm_ocr_blocking.
func (c *OcrClient) ExtractPages(path string) ([]PageText, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, docmodel.NewIngestIO(err)
	}

	payload := llmOcrRequest{
		PdfBase64:  base64.StdEncoding.EncodeToString(raw),
		SourcePath: path,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, docmodel.NewIngestHTTP(err)
	}

	req, err := http.NewRequest(http.MethodPost, c.Config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, docmodel.NewIngestHTTP(err)
	}
	req.Header.Set("content-type", "application/json")
	if c.Config.APIKey != "" {
		req.Header.Set("authorization", "Bearer "+c.Config.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, docmodel.NewIngestHTTP(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, docmodel.NewIngestOcrFailed(fmt.Sprintf(
			"multimodal OCR request to %s returned %d", c.Config.Endpoint, resp.StatusCode))
	}

	var parsed llmOcrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, docmodel.NewIngestHTTP(err)
	}

	pages, err := payloadToPages(parsed, path)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, docmodel.NewIngestOcrFailed("multimodal OCR response has no readable text: " + path)
	}
	return pages, nil
}

func (c *OcrClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// payloadToPages converts an OCR response into page texts, preferring the
// pages[] field (dropping empty/whitespace-only entries) and falling back
// to splitting the flat text field on form feed. Ported from
// payload_to_pages.
func payloadToPages(payload llmOcrResponse, path string) ([]PageText, error) {
	if len(payload.Pages) > 0 {
		listed := make([]PageText, 0, len(payload.Pages))
		for _, p := range payload.Pages {
			if p.Text == nil {
				continue
			}
			normalized := strings.TrimSpace(*p.Text)
			if normalized == "" {
				continue
			}
			pageNumber := 1
			if p.Page != nil {
				pageNumber = *p.Page
			}
			listed = append(listed, PageText{Number: uint32(pageNumber), Text: normalized})
		}
		if len(listed) > 0 {
			return listed, nil
		}
	}

	if payload.Text != nil {
		parts := strings.Split(*payload.Text, "")
		pages := make([]PageText, 0, len(parts))
		for i, chunk := range parts {
			normalized := strings.TrimSpace(chunk)
			if normalized == "" {
				continue
			}
			pages = append(pages, PageText{Number: uint32(i + 1), Text: normalized})
		}
		if len(pages) > 0 {
			return pages, nil
		}
	}

	return nil, docmodel.NewIngestOcrFailed("multimodal OCR response was empty for " + path)
}
