package docmodel

import (
	"reflect"
	"testing"
)

func TestAllTermsRequired_Explicit(t *testing.T) {
	q := SearchQuery{Text: "irrelevant text here", MandatoryTerms: []string{"bolt", "torque"}}
	got := q.AllTermsRequired()
	want := []string{"bolt", "torque"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAllTermsRequired_DerivedFromText(t *testing.T) {
	q := SearchQuery{Text: "a Bolt is ok"}
	got := q.AllTermsRequired()
	want := []string{"bolt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAllTermsRequired_DoesNotMutateMandatoryTerms(t *testing.T) {
	orig := []string{"bolt"}
	q := SearchQuery{MandatoryTerms: orig}
	got := q.AllTermsRequired()
	got[0] = "mutated"
	if orig[0] != "bolt" {
		t.Errorf("mutation leaked into MandatoryTerms: %v", orig)
	}
}

func TestChunkKindString(t *testing.T) {
	cases := map[ChunkKind]string{
		ChunkKindParagraph: "paragraph",
		ChunkKindHeading:   "heading",
		ChunkKindTable:     "table",
		ChunkKindFigure:    "figure",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("ChunkKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestIngestErrorUnwrap(t *testing.T) {
	cause := NewIngestInvalidArgument("boom")
	wrapped := NewIngestIO(cause)
	if wrapped.Unwrap() != cause {
		t.Errorf("Unwrap() did not return wrapped cause")
	}
	if wrapped.Error() == "" {
		t.Errorf("Error() returned empty string")
	}
}

func TestDefaultIngestionOptions(t *testing.T) {
	opts := DefaultIngestionOptions()
	if opts.ChunkMaxChars != 1200 || opts.ChunkOverlapChars != 120 || opts.MinChunkChars != 120 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}
