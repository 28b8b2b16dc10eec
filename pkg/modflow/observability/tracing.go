package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the modflow tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("modflow")

// SpanManager handles trace span lifecycle at the graph boundary.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
//
// Spans wrap boundary activity (a host node's run, individual source calls
// and ticks); emissions inside the graph are synchronous recursion and are
// reconstructed from event ancestry instead.
type SpanManager interface {
	// StartRunSpan starts a span covering a host node's whole run.
	StartRunSpan(ctx context.Context, nodeName, runID string) (context.Context, trace.Span)

	// StartSourceSpan starts a span for one inbound source call.
	StartSourceSpan(ctx context.Context, channel string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRunSpan starts a span covering a host node's whole run.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, nodeName, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "modflow.run",
		trace.WithAttributes(
			attribute.String("node.name", nodeName),
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSourceSpan starts a span for one inbound source call.
func (m *otelSpanManager) StartSourceSpan(ctx context.Context, channel string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "modflow.source."+channel,
		trace.WithAttributes(
			attribute.String("channel", channel),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
