// Package extract turns a PDF file on disk into per-page text, preferring a
// native structural parse and falling back to a configured multimodal OCR
// endpoint when the native parse fails. Ported from the original
// implementation's extractor module.
package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// PageText is one page's extracted text.
type PageText struct {
	Number uint32
	Text   string
}

// PdfExtractor extracts page text from a PDF file path.
type PdfExtractor interface {
	ExtractPages(path string) ([]PageText, error)
}

// NativeExtractor parses a PDF's content streams directly via
// github.com/ledongthuc/pdf, skipping pages with no extractable text.
type NativeExtractor struct{}

func (NativeExtractor) ExtractPages(path string) ([]PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, docmodel.NewIngestPdfParse(err.Error())
	}
	defer f.Close()

	pages := make([]PageText, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, docmodel.NewIngestPdfParse(err.Error())
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, PageText{Number: uint32(i), Text: text})
	}

	if len(pages) == 0 {
		return nil, docmodel.NewIngestPdfParse("pdf had no readable page text: " + path)
	}

	return pages, nil
}

// ExtractPageTexts extracts page text from path, trying the native parser
// first and falling back to multimodal OCR when the native parser returns a
// PdfParse error, which includes the case where no page had readable text.
// Errors of any other kind are returned without trying OCR. Ported from
// extract_page_texts.
func ExtractPageTexts(path string, ocr *OcrClient) ([]PageText, error) {
	pages, err := NativeExtractor{}.ExtractPages(path)
	if err == nil {
		return pages, nil
	}

	var ingestErr *docmodel.IngestError
	if ie, ok := err.(*docmodel.IngestError); ok {
		ingestErr = ie
	}
	if ingestErr == nil || ingestErr.Kind != docmodel.IngestPdfParse {
		return nil, err
	}

	ocrPages, ocrErr := tryOcrFallback(path, ocr)
	if ocrErr != nil {
		return nil, docmodel.NewIngestPdfParse(ingestErr.Message + "; multimodal OCR fallback failed: " + ocrErr.Error())
	}
	if ocrPages == nil {
		return nil, ingestErr
	}
	return ocrPages, nil
}

func tryOcrFallback(path string, ocr *OcrClient) ([]PageText, error) {
	if ocr == nil {
		return nil, nil
	}
	return ocr.ExtractPages(path)
}
