package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	scriptorerrors "github.com/jllopis/scriptor/pkg/errors"
	"github.com/jllopis/scriptor/pkg/graph"
	"github.com/jllopis/scriptor/pkg/journal"
)

func testManifest() graph.Manifest {
	return graph.Manifest{
		MetaStates: []graph.MetaState{
			{ID: "intent_analyze", Name: "Analyze"},
			{ID: "hotkey_comfort", Name: "Comfort"},
			{ID: "role_ethical_consultant", Description: "Analytical consulting role"},
			{ID: "role_partner_protector", Description: "Protective presence role"},
		},
		Relations: []graph.Relation{
			{From: "intent_analyze", To: "role_ethical_consultant", Relation: "triggers"},
			{From: "hotkey_comfort", To: "role_partner_protector", Relation: "activates"},
		},
	}
}

func TestNewRejectsDanglingRelation(t *testing.T) {
	m := testManifest()
	m.Relations = append(m.Relations, graph.Relation{From: "intent_ghost", To: "role_ethical_consultant", Relation: "triggers"})

	_, err := New(m)
	if err == nil {
		t.Fatal("expected construction to fail")
	}
	var missing *graph.MissingNodeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingNodeError in chain, got %v", err)
	}
	var se *scriptorerrors.ScriptorError
	if !errors.As(err, &se) || se.Code != scriptorerrors.CodeMissingNode {
		t.Fatalf("expected MISSING_NODE code, got %v", err)
	}
}

func TestSeeding(t *testing.T) {
	a, err := New(testManifest(),
		WithConceptStates([]graph.MetaState{
			{ID: "sanctuary_state", Description: "A protected shared space"},
			{ID: "", Description: "skipped"},
		}),
	)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	if got := a.Concepts().GetConcept("alpha_user_context"); got == "" {
		t.Error("foundation concepts should be seeded by default")
	}
	if got := a.Concepts().GetConcept("sanctuary_state"); got != "A protected shared space" {
		t.Errorf("meta-state concept missing, got %q", got)
	}

	reg := a.Roles()
	if err := reg.SetRole("ethical_consultant"); err != nil {
		t.Errorf("role from manifest should be defined: %v", err)
	}
	role, _ := reg.CurrentRole()
	if role.Description != "Analytical consulting role" {
		t.Errorf("role description from node, got %q", role.Description)
	}
	if len(role.FocusKeywords) == 0 {
		t.Error("consultant archetype should carry focus keywords")
	}
}

func TestFoundationConceptsInjectable(t *testing.T) {
	a, err := New(testManifest(), WithFoundationConcepts([]ConceptSeed{{Name: "only_one", Definition: "d"}}))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	if a.Concepts().GetConcept("alpha_user_context") != "" {
		t.Error("default foundation set must be replaced")
	}
	if a.Concepts().GetConcept("only_one") != "d" {
		t.Error("injected concept missing")
	}
}

func TestDetectRoleFirstMatchOrder(t *testing.T) {
	a, err := New(testManifest())
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	roleID, ok := a.DetectRole("please ANALYZE this")
	if !ok || roleID != "role_ethical_consultant" {
		t.Errorf("expected consultant, got %q ok=%v", roleID, ok)
	}

	// Both keywords present: registration order decides.
	roleID, ok = a.DetectRole("comfort me and analyze it")
	if !ok || roleID != "role_ethical_consultant" {
		t.Errorf("first registered keyword must win, got %q", roleID)
	}

	if _, ok := a.DetectRole("nothing relevant"); ok {
		t.Error("no keyword should match")
	}
}

func TestKeywordRebindLastWriteWins(t *testing.T) {
	m := testManifest()
	m.Relations = append(m.Relations, graph.Relation{
		From: "intent_analyze", To: "role_partner_protector", Relation: "activates",
	})
	a, err := New(m)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	roleID, ok := a.DetectRole("analyze")
	if !ok || roleID != "role_partner_protector" {
		t.Errorf("later edge must rebind the keyword, got %q", roleID)
	}
	// Rebinding must not change the keyword's scan position.
	if kws := a.Keywords(); len(kws) != 2 || kws[0] != "analyze" {
		t.Errorf("unexpected keyword order: %v", kws)
	}
}

func TestProcessMessageActivatesAndScores(t *testing.T) {
	a, err := New(testManifest())
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	res := a.ProcessMessage(context.Background(), "analyze the alpha_user_context")
	if res.RoleID != "role_ethical_consultant" || !res.Activated {
		t.Fatalf("expected activated consultant, got %+v", res)
	}
	if res.ActivationErr != nil {
		t.Fatalf("unexpected activation error: %v", res.ActivationErr)
	}
	if res.Fingerprint["alpha_user_context"] == 0 {
		t.Errorf("expected concept hit, got %v", res.Fingerprint)
	}
}

func TestProcessMessageActivationFailureObservable(t *testing.T) {
	m := graph.Manifest{
		MetaStates: []graph.MetaState{
			{ID: "intent_ping"},
			{ID: "misc_target"},
			{ID: "role_ethical_consultant"},
		},
		Relations: []graph.Relation{
			// Target is not a role_ node, so activation cannot succeed.
			{From: "intent_ping", To: "misc_target", Relation: "triggers"},
		},
	}
	a, err := New(m)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	res := a.ProcessMessage(context.Background(), "ping")
	if res.RoleID != "misc_target" || res.Activated {
		t.Fatalf("expected failed activation, got %+v", res)
	}
	var se *scriptorerrors.ScriptorError
	if !errors.As(res.ActivationErr, &se) || se.Code != scriptorerrors.CodeUnknownRole {
		t.Fatalf("expected UNKNOWN_ROLE, got %v", res.ActivationErr)
	}

	// The previously active role stays in place.
	if err := a.Roles().SetRole("ethical_consultant"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	a.ProcessMessage(context.Background(), "ping")
	role, ok := a.Roles().CurrentRole()
	if !ok || role.Name != "ethical_consultant" {
		t.Errorf("failed activation must not clear active role, got %+v", role)
	}
}

func TestProcessMessageNeverFails(t *testing.T) {
	a, err := New(testManifest())
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	inputs := []string{
		"",
		"!!! ??? ...",
		strings.Repeat("analyze ", 50_000),
		"\x00\xff",
	}
	for _, input := range inputs {
		res := a.ProcessMessage(context.Background(), input)
		if res.Fingerprint == nil {
			t.Errorf("fingerprint must never be nil for %q...", truncateRunes(input, 16))
		}
	}
}

func TestProcessMessageTruncation(t *testing.T) {
	a, err := New(testManifest(), WithMaxMessageBytes(16))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	res := a.ProcessMessage(context.Background(), strings.Repeat("x", 100))
	if !res.Truncated {
		t.Error("oversized message must be flagged truncated")
	}

	res = a.ProcessMessage(context.Background(), "short")
	if res.Truncated {
		t.Error("short message must not be truncated")
	}
}

func TestProcessMessageJournals(t *testing.T) {
	j := journal.NewInMemory()
	a, err := New(testManifest(), WithJournal(j))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	a.ProcessMessage(context.Background(), "analyze this")
	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RoleID != "role_ethical_consultant" || !entries[0].Activated {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestTruncateRunes(t *testing.T) {
	// Multi-byte runes must not be split.
	s := "héllo"
	got := truncateRunes(s, 2)
	if got != "h" {
		t.Errorf("expected %q, got %q", "h", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("short input must pass through, got %q", got)
	}
}
