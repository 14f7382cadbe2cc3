package graph

import (
	"errors"
	"testing"
)

func TestAddNodeFirstWriteWins(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Name: "alpha", Description: "first"})
	g.AddNode(Node{ID: "a", Name: "other", Description: "second"})

	node, ok := g.Node("a")
	if !ok {
		t.Fatalf("node a missing")
	}
	if node.Name != "alpha" || node.Description != "first" {
		t.Errorf("re-add replaced original node: %+v", node)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestAddEdgeMissingNode(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})

	err := g.AddEdge("a", "b", "knows")
	var missing *MissingNodeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingNodeError, got %v", err)
	}
	if missing.Source != "a" || missing.Target != "b" {
		t.Errorf("unexpected endpoints: %+v", missing)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("failed edge was recorded")
	}

	g.AddNode(Node{ID: "b"})
	if err := g.AddEdge("a", "b", "knows"); err != nil {
		t.Fatalf("edge with both endpoints present: %v", err)
	}
}

func TestAddEdgeDuplicatesAllowed(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	for i := 0; i < 3; i++ {
		if err := g.AddEdge("a", "b", "knows"); err != nil {
			t.Fatalf("add edge %d: %v", i, err)
		}
	}
	if g.EdgeCount() != 3 {
		t.Errorf("expected 3 edges, got %d", g.EdgeCount())
	}
}

func TestAdjacencyList(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(Node{ID: id})
	}
	edges := []Edge{
		{Source: "a", Target: "b", Relation: "first"},
		{Source: "a", Target: "c", Relation: "second"},
		{Source: "b", Target: "a", Relation: "third"},
	}
	for _, e := range edges {
		if err := g.AddEdge(e.Source, e.Target, e.Relation); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}

	adj := g.AdjacencyList()
	if len(adj) != 3 {
		t.Fatalf("expected an entry per node, got %d", len(adj))
	}
	total := 0
	for _, neighbors := range adj {
		total += len(neighbors)
	}
	if total != g.EdgeCount() {
		t.Errorf("pair total %d != edge count %d", total, g.EdgeCount())
	}

	want := []Neighbor{{Target: "b", Relation: "first"}, {Target: "c", Relation: "second"}}
	got := adj["a"]
	if len(got) != len(want) {
		t.Fatalf("node a: expected %d neighbors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("node a neighbor %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if len(adj["c"]) != 0 {
		t.Errorf("leaf node should map to empty list, got %v", adj["c"])
	}
}
