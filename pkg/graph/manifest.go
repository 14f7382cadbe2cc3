package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default relation labels per manifest domain.
const (
	DefaultConceptRelation = "related_to"
	DefaultRoleRelation    = "relates_to"
)

// Manifest is the already-parsed declarative form of a graph: a list of
// meta-states and the directed relations between them.
type Manifest struct {
	MetaStates []MetaState `json:"meta_states" yaml:"meta_states"`
	Relations  []Relation  `json:"relations" yaml:"relations"`
}

// MetaState declares one node. Name defaults to ID, Description to "".
type MetaState struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Relation declares one directed edge. Relation defaults to the domain's
// generic label.
type Relation struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Relation string `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// ParseJSON decodes a manifest from JSON.
func ParseJSON(data []byte) (Manifest, error) {
	if len(data) == 0 {
		return Manifest{}, fmt.Errorf("empty JSON payload")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse json manifest: %w", err)
	}
	return m, nil
}

// ParseYAML decodes a manifest from YAML.
func ParseYAML(data []byte) (Manifest, error) {
	if len(data) == 0 {
		return Manifest{}, fmt.Errorf("empty YAML payload")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse yaml manifest: %w", err)
	}
	return m, nil
}

// Build constructs a graph from a manifest. All nodes are added before
// any edge; if a relation references an unknown id the whole build fails
// and no graph is returned.
func Build(m Manifest, defaultRelation string) (*Graph, error) {
	if defaultRelation == "" {
		defaultRelation = DefaultConceptRelation
	}
	g := New()
	for _, state := range m.MetaStates {
		if state.ID == "" {
			return nil, fmt.Errorf("meta state id is required")
		}
		name := state.Name
		if name == "" {
			name = state.ID
		}
		g.AddNode(Node{ID: state.ID, Name: name, Description: state.Description})
	}
	for _, rel := range m.Relations {
		relation := rel.Relation
		if relation == "" {
			relation = defaultRelation
		}
		if err := g.AddEdge(rel.From, rel.To, relation); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Describe returns a human readable listing of nodes and relations.
func (g *Graph) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph with %d nodes and %d edges:\n", g.NodeCount(), g.EdgeCount())
	for _, id := range g.order {
		node := g.nodes[id]
		fmt.Fprintf(&b, "  %s: %s - %s\n", node.ID, node.Name, node.Description)
	}
	b.WriteString("Relations:\n")
	for _, edge := range g.edges {
		fmt.Fprintf(&b, "  %s --%s--> %s\n", edge.Source, edge.Relation, edge.Target)
	}
	return strings.TrimRight(b.String(), "\n")
}
