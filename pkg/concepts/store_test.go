package concepts

import (
	"math"
	"testing"
)

func TestAddConceptOverwrite(t *testing.T) {
	s := NewStore()
	s.AddConcept("First", "  one  ")
	s.AddConcept("second", "two")
	s.AddConcept("FIRST", "replacement")

	if got := s.GetConcept("first"); got != "replacement" {
		t.Errorf("re-add should overwrite definition, got %q", got)
	}
	order := s.ListConcepts()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("listing must keep first-insertion order, got %v", order)
	}
}

func TestGetConceptCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.AddConcept("Alpha_User_Context", " active context ")

	if got := s.GetConcept("alpha_user_context"); got != "active context" {
		t.Errorf("expected trimmed definition, got %q", got)
	}
	if got := s.GetConcept("missing"); got != "" {
		t.Errorf("miss must return empty string, got %q", got)
	}
}

func TestCompressContextEmpty(t *testing.T) {
	s := NewStore()
	s.AddConcept("foo", "a concept")

	if got := s.CompressContext(""); len(got) != 0 {
		t.Errorf("empty text must yield empty fingerprint, got %v", got)
	}
}

func TestCompressContextMeanPerWord(t *testing.T) {
	s := NewStore()
	s.AddConcept("foo bar", "a two word concept")

	got := s.CompressContext("foo foo bar")
	want := 1.5
	if math.Abs(got["foo bar"]-want) > 1e-9 {
		t.Errorf("expected score %v, got %v", want, got["foo bar"])
	}
}

func TestCompressContextOmitsZeroScores(t *testing.T) {
	s := NewStore()
	s.AddConcept("present", "")
	s.AddConcept("absent", "")

	got := s.CompressContext("present present")
	if _, ok := got["absent"]; ok {
		t.Errorf("zero-score concept must be omitted: %v", got)
	}
	if got["present"] != 2 {
		t.Errorf("scores are absolute counts, got %v", got["present"])
	}
}

func TestCompressContextUnboundedGrowth(t *testing.T) {
	s := NewStore()
	s.AddConcept("echo", "")

	low := s.CompressContext("echo")["echo"]
	high := s.CompressContext("echo echo echo echo")["echo"]
	if high <= low {
		t.Errorf("repeated mentions must raise the score: %v vs %v", low, high)
	}
}

func TestTokenizeUnicode(t *testing.T) {
	tokens := Tokenize("Держи ближе, under_score 42!")
	want := []string{"держи", "ближе", "under_score", "42"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: got %q want %q", i, tokens[i], want[i])
		}
	}
}
