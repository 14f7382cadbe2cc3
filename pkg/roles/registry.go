// Package roles manages role templates, the active role and the
// stimulus weighting applied to concept fingerprints.
package roles

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jllopis/scriptor/pkg/concepts"
)

// RoleTemplate bundles a role's description with the focus keywords used
// for attention filtering. Templates are immutable once defined;
// redefining a name replaces the whole template.
type RoleTemplate struct {
	Name          string
	Description   string
	FocusKeywords []string
}

// UnknownRoleError reports activation of a role that was never defined.
type UnknownRoleError struct {
	Name string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("roles: role %q is not defined", e.Name)
}

// Registry holds role templates, the active-role pointer and the current
// stimulus scalar. Scoring delegates to the concept store. Instances are
// not safe for concurrent use.
type Registry struct {
	concepts *concepts.Store
	roles    map[string]RoleTemplate
	current  string
	stimulus float64
}

// NewRegistry creates a registry scoring against the given concept store.
func NewRegistry(store *concepts.Store) *Registry {
	return &Registry{
		concepts: store,
		roles:    make(map[string]RoleTemplate),
	}
}

// DefineRole registers a role template, replacing any existing template
// with the same name.
func (r *Registry) DefineRole(name, description string, focusKeywords []string) {
	r.roles[name] = RoleTemplate{
		Name:          name,
		Description:   description,
		FocusKeywords: append([]string(nil), focusKeywords...),
	}
}

// SetRole activates a previously defined role. The previous active role
// is discarded; there is no history.
func (r *Registry) SetRole(name string) error {
	if _, ok := r.roles[name]; !ok {
		return &UnknownRoleError{Name: name}
	}
	r.current = name
	return nil
}

// CurrentRole returns the active role template, if any.
func (r *Registry) CurrentRole() (RoleTemplate, bool) {
	if r.current == "" {
		return RoleTemplate{}, false
	}
	role, ok := r.roles[r.current]
	return role, ok
}

// Roles returns the defined role names.
func (r *Registry) Roles() []string {
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	return names
}

// ApplyStimulus overwrites the stimulus scalar. Values are not clamped;
// negative weights can zero out or invert fingerprint scores.
func (r *Registry) ApplyStimulus(weight float64) {
	r.stimulus = weight
}

// Stimulus returns the current stimulus scalar.
func (r *Registry) Stimulus() float64 { return r.stimulus }

// FilterContext keeps only the sentence-like segments of text that
// contain at least one of the active role's focus keywords. With no
// active role or no keywords the text passes through unchanged.
func (r *Registry) FilterContext(text string) string {
	role, ok := r.CurrentRole()
	if !ok || len(role.FocusKeywords) == 0 {
		return text
	}

	keywords := make([]string, len(role.FocusKeywords))
	for i, kw := range role.FocusKeywords {
		keywords[i] = strings.ToLower(kw)
	}

	var kept []string
	for _, segment := range splitSegments(text) {
		lower := strings.ToLower(segment)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				kept = append(kept, segment)
				break
			}
		}
	}
	return strings.Join(kept, " ")
}

// SummariseContext filters text for the active role, compresses it into
// a concept fingerprint and scales every score by (1 + stimulus).
func (r *Registry) SummariseContext(text string) map[string]float64 {
	filtered := r.FilterContext(text)
	fingerprint := r.concepts.CompressContext(filtered)
	summary := make(map[string]float64, len(fingerprint))
	for k, v := range fingerprint {
		summary[k] = v * (1.0 + r.stimulus)
	}
	return summary
}

// splitSegments cuts text immediately after '.', '!' or '?' when
// followed by whitespace, consuming the whitespace run. This is a naive
// boundary heuristic, not a sentence parser.
func splitSegments(text string) []string {
	var segments []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		c := runes[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			segments = append(segments, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		segments = append(segments, string(runes[start:]))
	}
	return segments
}
