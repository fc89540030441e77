// Package chunking splits normalized page text into citation-sized chunks
// and tags each with section/clause context, ported from the original
// implementation's chunking module.
package chunking

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/corpussearch/docsearch/internal/docmodel"
)

// Config controls the greedy packer and oversize hard-split thresholds.
type Config struct {
	MaxChars     int
	OverlapChars int
	MinChars     int
}

// ConfigFromOptions derives a Config from IngestionOptions.
func ConfigFromOptions(opts docmodel.IngestionOptions) Config {
	return Config{
		MaxChars:     opts.ChunkMaxChars,
		OverlapChars: opts.ChunkOverlapChars,
		MinChars:     opts.MinChunkChars,
	}
}

// NormalizeWhitespace collapses all whitespace runs to single spaces and
// removes non-breaking spaces, mirroring normalize_whitespace.
func NormalizeWhitespace(text string) string {
	fields := strings.Fields(text)
	joined := strings.Join(fields, " ")
	return strings.ReplaceAll(joined, " ", " ")
}

// ChunkByParagraph greedily packs paragraphs (split on blank lines) into
// chunks no larger than config.MaxChars bytes, then hard-splits any
// resulting chunk that still exceeds MaxChars on code-point boundaries with
// overlap. Ported from chunk_by_paragraph.
func ChunkByParagraph(normalized string, config Config) []string {
	rawParagraphs := make([]string, 0)
	for _, p := range strings.Split(normalized, "\n\n") {
		p = strings.ReplaceAll(strings.TrimSpace(p), "\t", " ")
		if strings.TrimSpace(p) == "" {
			continue
		}
		rawParagraphs = append(rawParagraphs, p)
	}

	chunks := make([]string, 0)
	var current strings.Builder

	for _, paragraph := range rawParagraphs {
		if current.Len() == 0 {
			current.WriteString(paragraph)
			continue
		}

		if current.Len()+len(paragraph)+2 <= config.MaxChars {
			current.WriteString("\n\n")
			current.WriteString(paragraph)
		} else {
			if current.Len() >= config.MinChars {
				chunks = append(chunks, current.String())
			}
			current.Reset()
			current.WriteString(paragraph)
		}
	}

	if current.Len() >= config.MinChars {
		chunks = append(chunks, current.String())
	}

	if len(chunks) == 0 && strings.TrimSpace(normalized) != "" {
		chunks = append(chunks, strings.TrimSpace(normalized))
	}

	withOverlap := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk) <= config.MaxChars {
			withOverlap = append(withOverlap, chunk)
			continue
		}

		runes := []rune(chunk)
		start := 0
		step := config.MaxChars - config.OverlapChars
		if step <= 0 {
			step = config.MaxChars
		}
		for start < len(runes) {
			end := start + config.MaxChars
			if end > len(runes) {
				end = len(runes)
			}
			withOverlap = append(withOverlap, string(runes[start:end]))
			if end == len(runes) {
				break
			}
			start += step
		}
	}

	return withOverlap
}

// BuildChunks chunks one page's normalized text and assembles PdfChunks,
// threading a global chunk_index cursor across calls (one call per page,
// across the whole document). Ported from build_chunks.
func BuildChunks(
	document docmodel.DocumentFingerprint,
	page uint32,
	sectionContext string,
	clauseID string,
	pageText string,
	options docmodel.IngestionOptions,
	globalIndex uint64,
) ([]docmodel.PdfChunk, uint64, error) {
	config := ConfigFromOptions(options)
	normalized := NormalizeWhitespace(pageText)

	sectionHeadingRe, err := regexp.Compile(options.SectionHeadingRegex)
	if err != nil {
		return nil, globalIndex, docmodel.NewIngestRegexError(err)
	}
	clauseRe, err := regexp.Compile(options.ClauseRegex)
	if err != nil {
		return nil, globalIndex, docmodel.NewIngestRegexError(err)
	}

	chunks := make([]docmodel.PdfChunk, 0)
	cursor := globalIndex

	for _, rawChunk := range ChunkByParagraph(normalized, config) {
		if len(strings.TrimSpace(rawChunk)) < config.MinChars {
			continue
		}

		firstLine := firstLineOf(rawChunk)

		var clauseMatch string
		if loc := clauseRe.FindString(firstLine); loc != "" {
			clauseMatch = loc
		}

		isHeading := sectionHeadingRe.MatchString(firstLine)
		finalSection := sectionContext
		if isHeading {
			finalSection = firstLine
		}

		chunkID := makeChunkID(document.DocumentID, page, cursor, rawChunk)

		finalClause := clauseMatch
		if finalClause == "" {
			finalClause = clauseID
		}

		kind := docmodel.ChunkKindParagraph
		if isHeading {
			kind = docmodel.ChunkKindHeading
		}

		chunks = append(chunks, docmodel.PdfChunk{
			ChunkID:        chunkID,
			DocumentID:     document.DocumentID,
			SourcePath:     document.SourcePath,
			Title:          document.DocumentTitle,
			Version:        document.Version,
			Standard:       document.Standard,
			SectionPath:    finalSection,
			ClauseID:       finalClause,
			PageStart:      page,
			PageEnd:        page,
			ChunkIndex:     cursor,
			TextRaw:        rawChunk,
			TextNormalized: NormalizeWhitespace(rawChunk),
			Kind:           kind,
			References:     []string{},
			Units:          extractUnitTokens(rawChunk),
		})

		cursor++
	}

	return chunks, cursor, nil
}

func firstLineOf(text string) string {
	idx := strings.IndexByte(text, '\n')
	if idx == -1 {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:idx])
}

// makeChunkID hashes document_id || page(LE u32) || index(LE u64) || text,
// ported from make_chunk_id.
func makeChunkID(documentID string, page uint32, index uint64, text string) string {
	h := sha256.New()
	h.Write([]byte(documentID))
	var pageBytes [4]byte
	binary.LittleEndian.PutUint32(pageBytes[:], page)
	h.Write(pageBytes[:])
	var indexBytes [8]byte
	binary.LittleEndian.PutUint64(indexBytes[:], index)
	h.Write(indexBytes[:])
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

var unitTable = []string{"mm", "cm", "m", "in", "psi", "bar", "kpa", "pa", "%", "rpm", "hz"}

// extractUnitTokens returns every entry of the fixed unit table that
// appears as a substring of the lowercased text, in table order.
func extractUnitTokens(text string) []string {
	lowered := strings.ToLower(text)
	out := make([]string, 0)
	for _, unit := range unitTable {
		if strings.Contains(lowered, unit) {
			out = append(out, unit)
		}
	}
	return out
}
