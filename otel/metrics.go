// Package otel instruments the navigation engine with OpenTelemetry
// traces and metrics. The engine itself stays pure; instrumentation
// wraps it from the outside.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/petal-labs/formflow"
)

// Metrics records counters and a histogram for navigation resolutions.
type Metrics struct {
	resolutions metric.Int64Counter
	ruleMatches metric.Int64Counter
	deadEnds    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutions, err := meter.Int64Counter("formflow.resolutions",
		metric.WithDescription("Number of next-block resolutions"),
	)
	if err != nil {
		return nil, err
	}

	ruleMatches, err := meter.Int64Counter("formflow.rule.matches",
		metric.WithDescription("Number of resolutions decided by a matching rule"),
	)
	if err != nil {
		return nil, err
	}

	deadEnds, err := meter.Int64Counter("formflow.dead.ends",
		metric.WithDescription("Number of resolutions that ended the form"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("formflow.resolve.duration",
		metric.WithDescription("Duration of a resolution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		resolutions: resolutions,
		ruleMatches: ruleMatches,
		deadEnds:    deadEnds,
		duration:    duration,
	}, nil
}

// Record registers one resolution outcome for a source block.
func (m *Metrics) Record(ctx context.Context, sourceID string, d formflow.Decision, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("block_id", sourceID),
		attribute.String("decision", string(d.Kind)),
	)
	m.resolutions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, seconds, attrs)

	switch {
	case d.Kind == formflow.DecisionEnd:
		m.deadEnds.Add(ctx, 1, attrs)
	case d.RuleID != "":
		m.ruleMatches.Add(ctx, 1, attrs)
	}
}
