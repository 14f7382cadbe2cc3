// Package graph implements the labeled directed graph shared by the
// concept and role manifest domains.
package graph

import "fmt"

// Node is a named state in the semantic graph.
type Node struct {
	ID          string
	Name        string
	Description string
}

// Edge is a directed relation between two nodes.
type Edge struct {
	Source   string
	Target   string
	Relation string
}

// Neighbor is one outgoing (target, relation) pair of a node.
type Neighbor struct {
	Target   string
	Relation string
}

// MissingNodeError reports an edge whose endpoint was never added.
type MissingNodeError struct {
	Source string
	Target string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("graph: both source %q and target %q must exist before adding an edge", e.Source, e.Target)
}

// Graph is a directed labeled graph. Node ids are unique; edges are kept
// in insertion order and duplicates are allowed. Instances are not safe
// for concurrent use.
type Graph struct {
	nodes map[string]Node
	order []string
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// AddNode adds a node. If the id already exists the call is a no-op and
// the original node is retained.
func (g *Graph) AddNode(node Node) {
	if _, ok := g.nodes[node.ID]; ok {
		return
	}
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
}

// AddEdge appends a directed edge. Both endpoints must already exist.
func (g *Graph) AddEdge(source, target, relation string) error {
	_, srcOK := g.nodes[source]
	_, dstOK := g.nodes[target]
	if !srcOK || !dstOK {
		return &MissingNodeError{Source: source, Target: target}
	}
	g.edges = append(g.edges, Edge{Source: source, Target: target, Relation: relation})
	return nil
}

// Node returns the node for id, if present.
func (g *Graph) Node(id string) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.order...)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AdjacencyList maps every node id to its outgoing (target, relation)
// pairs in edge-insertion order. Nodes without outgoing edges map to an
// empty list.
func (g *Graph) AdjacencyList() map[string][]Neighbor {
	adj := make(map[string][]Neighbor, len(g.nodes))
	for id := range g.nodes {
		adj[id] = []Neighbor{}
	}
	for _, edge := range g.edges {
		adj[edge.Source] = append(adj[edge.Source], Neighbor{Target: edge.Target, Relation: edge.Relation})
	}
	return adj
}
