package embedding

import (
	"math"
	"testing"
)

func TestEmbedIsDeterministic(t *testing.T) {
	e := NewCharacterNgramEmbedder()
	first := e.Embed("Hydraulic pressure and flow")
	second := e.Embed("Hydraulic pressure and flow")
	if len(first) != len(second) {
		t.Fatalf("length mismatch")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestEmbedOutputLength(t *testing.T) {
	e := CharacterNgramEmbedder{Dimensions_: 32}
	v := e.Embed("abc")
	if len(v) != 32 {
		t.Fatalf("got length %d, want 32", len(v))
	}
}

func TestEmbedShortTextIsZeroVector(t *testing.T) {
	e := NewCharacterNgramEmbedder()
	for _, text := range []string{"", "a", "ab"} {
		v := e.Embed(text)
		for i, val := range v {
			if val != 0 {
				t.Fatalf("text %q: expected zero vector, got nonzero at %d: %v", text, i, val)
			}
		}
	}
}

func TestEmbedIsNormalized(t *testing.T) {
	e := NewCharacterNgramEmbedder()
	v := e.Embed("hydraulic pressure and flow across several valves")
	var sumSq float64
	for _, val := range v {
		sumSq += float64(val) * float64(val)
	}
	mag := math.Sqrt(sumSq)
	if math.Abs(mag-1.0) > 1e-5 {
		t.Fatalf("expected unit magnitude, got %v", mag)
	}
}

func TestDimensionsFloorsToOne(t *testing.T) {
	e := CharacterNgramEmbedder{Dimensions_: 0}
	if got := e.Dimensions(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}
