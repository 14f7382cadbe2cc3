// Package concepts provides the semantic concept store and the
// token-frequency compression that scores free text against it.
package concepts

import (
	"regexp"
	"strings"
)

// wordPattern matches word tokens: letter, digit and underscore runs
// with Unicode boundaries.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Store maps concept names to their definitions. Keys are case-folded
// and listed in first-insertion order. Instances are not safe for
// concurrent use.
type Store struct {
	concepts map[string]string
	order    []string
}

// NewStore creates an empty concept store.
func NewStore() *Store {
	return &Store{concepts: make(map[string]string)}
}

// AddConcept registers a concept. The name is lowercased and the
// definition trimmed. Re-adding an existing name overwrites its
// definition but keeps its position in the listing.
func (s *Store) AddConcept(name, definition string) {
	key := strings.ToLower(name)
	if _, ok := s.concepts[key]; !ok {
		s.order = append(s.order, key)
	}
	s.concepts[key] = strings.TrimSpace(definition)
}

// GetConcept returns the definition for name, or the empty string when
// the concept is unknown. Lookup is case-insensitive.
func (s *Store) GetConcept(name string) string {
	return s.concepts[strings.ToLower(name)]
}

// ListConcepts returns concept names in first-insertion order.
func (s *Store) ListConcepts() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of stored concepts.
func (s *Store) Len() int { return len(s.concepts) }

// Tokenize lowercases text and splits it into word tokens.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// CompressContext reduces text to a semantic fingerprint: for every
// concept whose name-words occur in the text, the mean per-word
// occurrence count. Concepts with score zero are omitted. Scores are
// absolute, not normalized against text length, so repeated mentions
// keep raising them.
func (s *Store) CompressContext(text string) map[string]float64 {
	counts := make(map[string]int)
	for _, token := range Tokenize(text) {
		counts[token]++
	}

	relevance := make(map[string]float64)
	for key := range s.concepts {
		parts := Tokenize(key)
		if len(parts) == 0 {
			continue
		}
		score := 0
		for _, part := range parts {
			score += counts[part]
		}
		if score > 0 {
			relevance[key] = float64(score) / float64(len(parts))
		}
	}
	return relevance
}
