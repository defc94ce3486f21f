package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/formflow"
	"github.com/petal-labs/formflow/condition"
)

// Resolver wraps formflow.Resolve with a span per resolution and
// optional metrics. The wrapped call keeps the engine's semantics
// exactly; only observability is added.
type Resolver struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewResolver creates an instrumented resolver. metrics may be nil.
func NewResolver(tracer trace.Tracer, metrics *Metrics) *Resolver {
	return &Resolver{tracer: tracer, metrics: metrics}
}

// Resolve picks the next block for the answer, recording a span named
// formflow.resolve with the source block and decision attributes.
func (r *Resolver) Resolve(ctx context.Context, sourceID string, conn *formflow.Connection, ans condition.Answer) formflow.Decision {
	ctx, span := r.tracer.Start(ctx, "formflow.resolve",
		trace.WithAttributes(attribute.String("block_id", sourceID)),
	)
	defer span.End()

	start := time.Now()
	d := formflow.Resolve(conn, ans)

	span.SetAttributes(
		attribute.String("decision", string(d.Kind)),
		attribute.String("target_id", d.TargetID),
	)
	if d.RuleID != "" {
		span.SetAttributes(attribute.String("rule_id", d.RuleID))
	}

	if r.metrics != nil {
		r.metrics.Record(ctx, sourceID, d, time.Since(start).Seconds())
	}
	return d
}
