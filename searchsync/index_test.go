package searchsync

import (
	"reflect"
	"testing"
)

func TestTokenize_MixedScripts(t *testing.T) {
	got := Tokenize("Санаторий «Жемчужина»", "Seaside resort & spa")
	want := []string{"санаторий", "жемчужина", "seaside", "resort", "spa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenize_DropsNoise(t *testing.T) {
	got := Tokenize("a b на x2 --- x2")
	// single-rune tokens and duplicates are dropped
	want := []string{"на", "x2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize("", " !!! "); got != nil {
		t.Fatalf("expected no tokens, got %v", got)
	}
}
