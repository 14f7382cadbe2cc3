// Package agent wires the role graph, concept store and role registry
// into a message-processing orchestrator.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jllopis/scriptor/pkg/concepts"
	scriptorerrors "github.com/jllopis/scriptor/pkg/errors"
	"github.com/jllopis/scriptor/pkg/graph"
	"github.com/jllopis/scriptor/pkg/journal"
	"github.com/jllopis/scriptor/pkg/roles"
	"github.com/jllopis/scriptor/pkg/telemetry"
)

// Node id prefixes and edge relations recognized in role manifests.
const (
	rolePrefix   = "role_"
	intentPrefix = "intent_"
	hotkeyPrefix = "hotkey_"

	relationTriggers  = "triggers"
	relationActivates = "activates"
)

// DefaultMaxMessageBytes bounds incoming message size. Oversized
// messages are truncated, never rejected.
const DefaultMaxMessageBytes = 64 * 1024

// Result is the outcome of processing one message. Processing never
// fails; activation problems are reported as data.
type Result struct {
	// Fingerprint maps concept names to stimulus-weighted relevance.
	Fingerprint map[string]float64

	// RoleID is the detected role node id, empty when no keyword matched.
	RoleID string

	// Activated reports whether the detected role was activated.
	Activated bool

	// ActivationErr is set when a detected role could not be activated.
	// The previously active role stays in place.
	ActivationErr error

	// Truncated reports whether the message was cut to the size bound.
	Truncated bool
}

// Agent orchestrates role detection, activation and context
// summarisation over a manifest-defined role graph. Instances are safe
// only under sequential access.
type Agent struct {
	id       string
	graph    *graph.Graph
	concepts *concepts.Store
	roles    *roles.Registry
	keywords []string
	bound    map[string]string
	logger   *slog.Logger
	metrics  *telemetry.AgentMetrics
	journal  journal.Journal
	maxBytes int

	classifier    Classifier
	foundation    []ConceptSeed
	foundationSet bool
	seedStates    []graph.MetaState
}

// Option configures an Agent instance.
type Option func(*Agent) error

// New builds an agent from an already-parsed role manifest. Construction
// fails if the manifest references unknown nodes; no partially built
// agent is returned.
func New(manifest graph.Manifest, opts ...Option) (*Agent, error) {
	a := &Agent{
		classifier: DefaultClassifier(),
		maxBytes:   DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	g, err := graph.Build(manifest, graph.DefaultRoleRelation)
	if err != nil {
		return nil, wrapBuildError(err)
	}
	a.graph = g
	a.concepts = concepts.NewStore()
	a.roles = roles.NewRegistry(a.concepts)

	a.seedConcepts()
	a.seedRoles()
	a.buildKeywordMap()

	a.logger.Debug("agent constructed",
		"agent_id", a.id,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"keywords", len(a.keywords),
		"concepts", a.concepts.Len(),
	)
	return a, nil
}

func wrapBuildError(err error) error {
	var missing *graph.MissingNodeError
	if errors.As(err, &missing) {
		return scriptorerrors.New(scriptorerrors.CodeMissingNode, "role manifest references unknown node", err).
			WithContext("source", missing.Source).
			WithContext("target", missing.Target)
	}
	return scriptorerrors.New(scriptorerrors.CodeManifestError, "role manifest rejected", err)
}

// WithID sets the agent instance id.
func WithID(id string) Option {
	return func(a *Agent) error {
		a.id = id
		return nil
	}
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		a.logger = logger
		return nil
	}
}

// WithMetrics attaches a metrics tracker.
func WithMetrics(metrics *telemetry.AgentMetrics) Option {
	return func(a *Agent) error {
		a.metrics = metrics
		return nil
	}
}

// WithClassifier replaces the default archetype rule table.
func WithClassifier(classifier Classifier) Option {
	return func(a *Agent) error {
		a.classifier = classifier
		return nil
	}
}

// WithFoundationConcepts replaces the built-in foundational concept set.
func WithFoundationConcepts(seeds []ConceptSeed) Option {
	return func(a *Agent) error {
		a.foundation = append([]ConceptSeed(nil), seeds...)
		a.foundationSet = true
		return nil
	}
}

// WithConceptStates seeds additional concepts from auxiliary
// meta-state descriptions, typically a concept manifest loaded by the
// caller.
func WithConceptStates(states []graph.MetaState) Option {
	return func(a *Agent) error {
		a.seedStates = append(a.seedStates, states...)
		return nil
	}
}

// WithJournal attaches a journal for processing results.
func WithJournal(j journal.Journal) Option {
	return func(a *Agent) error {
		a.journal = j
		return nil
	}
}

// WithMaxMessageBytes bounds incoming message size. Zero or negative
// disables truncation.
func WithMaxMessageBytes(n int) Option {
	return func(a *Agent) error {
		a.maxBytes = n
		return nil
	}
}

func (a *Agent) seedConcepts() {
	foundation := a.foundation
	if !a.foundationSet {
		foundation = DefaultFoundationConcepts()
	}
	for _, seed := range foundation {
		a.concepts.AddConcept(seed.Name, seed.Definition)
	}
	for _, state := range a.seedStates {
		if state.ID == "" {
			continue
		}
		a.concepts.AddConcept(state.ID, state.Description)
	}
}

func (a *Agent) seedRoles() {
	for _, id := range a.graph.NodeIDs() {
		if !strings.HasPrefix(id, rolePrefix) {
			continue
		}
		node, _ := a.graph.Node(id)
		roleName := strings.TrimPrefix(id, rolePrefix)
		a.roles.DefineRole(roleName, node.Description, a.classifier.Keywords(roleName))
	}
}

// buildKeywordMap derives the ordered keyword->role map from triggers and
// activates edges. A later edge for the same keyword rebinds it but
// keeps the keyword's original scan position.
func (a *Agent) buildKeywordMap() {
	a.bound = make(map[string]string)
	for _, edge := range a.graph.Edges() {
		if edge.Relation != relationTriggers && edge.Relation != relationActivates {
			continue
		}
		var keyword string
		switch {
		case strings.HasPrefix(edge.Source, intentPrefix):
			keyword = strings.TrimPrefix(edge.Source, intentPrefix)
		case strings.HasPrefix(edge.Source, hotkeyPrefix):
			keyword = strings.TrimPrefix(edge.Source, hotkeyPrefix)
		default:
			continue
		}
		if _, ok := a.bound[keyword]; !ok {
			a.keywords = append(a.keywords, keyword)
		}
		a.bound[keyword] = edge.Target
	}
}

// DetectRole scans registered keywords in insertion order and returns
// the role id bound to the first keyword found as a substring of the
// lowercased message.
func (a *Agent) DetectRole(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, keyword := range a.keywords {
		if strings.Contains(lowered, keyword) {
			return a.bound[keyword], true
		}
	}
	return "", false
}

// ProcessMessage detects a role, attempts activation and summarises the
// message into a fingerprint. It never fails: activation errors and
// truncation are reported in the Result.
func (a *Agent) ProcessMessage(ctx context.Context, message string) Result {
	var res Result

	if a.maxBytes > 0 && len(message) > a.maxBytes {
		message = truncateRunes(message, a.maxBytes)
		res.Truncated = true
		a.logger.WarnContext(ctx, "message truncated",
			"agent_id", a.id,
			"max_bytes", a.maxBytes,
		)
		a.metrics.RecordTruncation(ctx)
	}

	roleID, detected := a.DetectRole(message)
	if detected {
		res.RoleID = roleID
		roleName := strings.TrimPrefix(roleID, rolePrefix)
		if err := a.roles.SetRole(roleName); err != nil {
			res.ActivationErr = scriptorerrors.New(scriptorerrors.CodeUnknownRole, "role activation failed", err).
				WithContext("role", roleName)
			a.logger.WarnContext(ctx, "role activation failed",
				"agent_id", a.id,
				"role", roleName,
				"error", err,
			)
		} else {
			res.Activated = true
		}
		a.metrics.RecordActivation(ctx, roleName, res.ActivationErr)
	}

	res.Fingerprint = a.roles.SummariseContext(message)
	a.metrics.RecordMessage(ctx, detected, len(res.Fingerprint))

	if a.journal != nil {
		entry := journal.Entry{
			ID:          uuid.NewString(),
			Message:     message,
			RoleID:      res.RoleID,
			Activated:   res.Activated,
			Fingerprint: res.Fingerprint,
			CreatedAt:   time.Now(),
		}
		if err := a.journal.Append(ctx, entry); err != nil {
			a.logger.ErrorContext(ctx, "journal append failed",
				"agent_id", a.id,
				"error", err,
			)
			a.metrics.RecordJournalError(ctx)
		}
	}
	return res
}

// ID returns the agent instance id.
func (a *Agent) ID() string { return a.id }

// Graph returns the role graph.
func (a *Agent) Graph() *graph.Graph { return a.graph }

// Concepts returns the concept store.
func (a *Agent) Concepts() *concepts.Store { return a.concepts }

// Roles returns the role registry.
func (a *Agent) Roles() *roles.Registry { return a.roles }

// Keywords returns the registered keywords in scan order.
func (a *Agent) Keywords() []string {
	return append([]string(nil), a.keywords...)
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
