package docmodel

import "strings"

// tokenizeMandatory lowercases and splits text on whitespace, keeping only
// tokens longer than two bytes. Ported from the original's
// SearchQuery::all_terms_required fallback branch, including its byte-length
// (not rune-length) threshold.
func tokenizeMandatory(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		lower := strings.ToLower(f)
		if len(lower) > 2 {
			out = append(out, lower)
		}
	}
	return out
}
