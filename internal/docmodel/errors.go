package docmodel

import "fmt"

// IngestKind classifies an ingestion failure. Ported from the original
// IngestError enum.
type IngestKind int

const (
	IngestIO IngestKind = iota
	IngestPdfParse
	IngestRegexError
	IngestMissingFileName
	IngestInvalidChunkConfig
	IngestInvalidArgument
	IngestHTTP
	IngestOcrFailed
)

func (k IngestKind) String() string {
	switch k {
	case IngestIO:
		return "io"
	case IngestPdfParse:
		return "pdf_parse"
	case IngestRegexError:
		return "regex_error"
	case IngestMissingFileName:
		return "missing_file_name"
	case IngestInvalidChunkConfig:
		return "invalid_chunk_config"
	case IngestInvalidArgument:
		return "invalid_argument"
	case IngestHTTP:
		return "http"
	case IngestOcrFailed:
		return "ocr_failed"
	default:
		return "unknown"
	}
}

// IngestError is a classified ingestion failure with an optional wrapped
// cause, mirroring the original's thiserror-derived IngestError enum.
type IngestError struct {
	Kind    IngestKind
	Message string
	Cause   error
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *IngestError) Unwrap() error { return e.Cause }

func NewIngestIO(cause error) *IngestError {
	return &IngestError{Kind: IngestIO, Message: "io error", Cause: cause}
}

func NewIngestPdfParse(msg string) *IngestError {
	return &IngestError{Kind: IngestPdfParse, Message: fmt.Sprintf("pdf parse error: %s", msg)}
}

func NewIngestRegexError(cause error) *IngestError {
	return &IngestError{Kind: IngestRegexError, Message: "regex error", Cause: cause}
}

func NewIngestMissingFileName(path string) *IngestError {
	return &IngestError{Kind: IngestMissingFileName, Message: fmt.Sprintf("path has no file name: %s", path)}
}

func NewIngestInvalidChunkConfig(msg string) *IngestError {
	return &IngestError{Kind: IngestInvalidChunkConfig, Message: fmt.Sprintf("invalid chunking config: %s", msg)}
}

func NewIngestInvalidArgument(msg string) *IngestError {
	return &IngestError{Kind: IngestInvalidArgument, Message: fmt.Sprintf("invalid argument: %s", msg)}
}

func NewIngestHTTP(cause error) *IngestError {
	return &IngestError{Kind: IngestHTTP, Message: "http error", Cause: cause}
}

func NewIngestOcrFailed(msg string) *IngestError {
	return &IngestError{Kind: IngestOcrFailed, Message: fmt.Sprintf("multimodal OCR failed: %s", msg)}
}

// SearchKind classifies a search failure. Ported from the original
// SearchError enum.
type SearchKind int

const (
	SearchBackendResponse SearchKind = iota
	SearchHTTP
	SearchURL
	SearchSerialization
	SearchRequest
	SearchNotReady
)

func (k SearchKind) String() string {
	switch k {
	case SearchBackendResponse:
		return "backend_response"
	case SearchHTTP:
		return "http"
	case SearchURL:
		return "url"
	case SearchSerialization:
		return "serialization"
	case SearchRequest:
		return "request"
	case SearchNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// SearchError is a classified search failure.
type SearchError struct {
	Kind    SearchKind
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SearchError) Unwrap() error { return e.Cause }

func NewSearchBackendResponse(backend, details string) *SearchError {
	return &SearchError{
		Kind:    SearchBackendResponse,
		Message: fmt.Sprintf("invalid response from %s: %s", backend, details),
	}
}

func NewSearchHTTP(cause error) *SearchError {
	return &SearchError{Kind: SearchHTTP, Message: "http error", Cause: cause}
}

func NewSearchURL(cause error) *SearchError {
	return &SearchError{Kind: SearchURL, Message: "url parse error", Cause: cause}
}

func NewSearchSerialization(cause error) *SearchError {
	return &SearchError{Kind: SearchSerialization, Message: "serialize error", Cause: cause}
}

func NewSearchRequest(msg string) *SearchError {
	return &SearchError{Kind: SearchRequest, Message: fmt.Sprintf("search request failed: %s", msg)}
}

func NewSearchNotReady(msg string) *SearchError {
	return &SearchError{Kind: SearchNotReady, Message: fmt.Sprintf("store not available yet: %s", msg)}
}
