// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides observability for Scriptor message processing.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/scriptor/pkg/errors"
)

// AgentMetrics tracks message processing, role activations and journal
// health for production monitoring.
type AgentMetrics struct {
	// messageCounter tracks processed messages by detection outcome
	messageCounter metric.Int64Counter

	// activationCounter tracks role activations by role and result
	activationCounter metric.Int64Counter

	// truncationCounter tracks messages cut down to the size bound
	truncationCounter metric.Int64Counter

	// journalErrorCounter tracks failed journal appends
	journalErrorCounter metric.Int64Counter

	// fingerprintSizeGauge tracks the concept count of the last fingerprint
	fingerprintSizeGauge metric.Int64Gauge
}

// NewAgentMetrics creates a metrics tracker with OTEL meters.
func NewAgentMetrics(ctx context.Context) (*AgentMetrics, error) {
	meter := otel.Meter("scriptor/agent")

	messageCounter, err := meter.Int64Counter(
		"scriptor.messages.total",
		metric.WithDescription("Processed messages by role detection outcome"),
	)
	if err != nil {
		return nil, err
	}

	activationCounter, err := meter.Int64Counter(
		"scriptor.activations.total",
		metric.WithDescription("Role activation attempts by role and result"),
	)
	if err != nil {
		return nil, err
	}

	truncationCounter, err := meter.Int64Counter(
		"scriptor.messages.truncated",
		metric.WithDescription("Messages truncated to the configured size bound"),
	)
	if err != nil {
		return nil, err
	}

	journalErrorCounter, err := meter.Int64Counter(
		"scriptor.journal.errors",
		metric.WithDescription("Failed journal appends"),
	)
	if err != nil {
		return nil, err
	}

	fingerprintSizeGauge, err := meter.Int64Gauge(
		"scriptor.fingerprint.size",
		metric.WithDescription("Concept count of the most recent fingerprint"),
	)
	if err != nil {
		return nil, err
	}

	return &AgentMetrics{
		messageCounter:       messageCounter,
		activationCounter:    activationCounter,
		truncationCounter:    truncationCounter,
		journalErrorCounter:  journalErrorCounter,
		fingerprintSizeGauge: fingerprintSizeGauge,
	}, nil
}

// RecordMessage counts one processed message.
func (m *AgentMetrics) RecordMessage(ctx context.Context, roleDetected bool, fingerprintSize int) {
	if m == nil {
		return
	}
	m.messageCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("role.detected", roleDetected)),
	)
	m.fingerprintSizeGauge.Record(ctx, int64(fingerprintSize))
}

// RecordActivation counts one role activation attempt.
func (m *AgentMetrics) RecordActivation(ctx context.Context, role string, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("role", role),
		attribute.Bool("success", err == nil),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error.code", string(errors.AsScriptorError(err).Code)))
	}
	m.activationCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTruncation counts one truncated message.
func (m *AgentMetrics) RecordTruncation(ctx context.Context) {
	if m == nil {
		return
	}
	m.truncationCounter.Add(ctx, 1)
}

// RecordJournalError counts one failed journal append.
func (m *AgentMetrics) RecordJournalError(ctx context.Context) {
	if m == nil {
		return
	}
	m.journalErrorCounter.Add(ctx, 1)
}
