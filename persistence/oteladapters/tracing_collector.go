package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bruhsty/bruhsty/persistence"
)

const (
	attrStatus               = "status"
	statusDescriptionFailed  = "operation failed"
	statusDescriptionTimeout = "operation timed out"
	statusDescriptionCancel  = "operation cancelled"
)

// TracingCollector implements persistence.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector that starts its spans with tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, persistence.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan sets attrs and the status on the span and ends it.
// Spans that were not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx persistence.SpanContext, status string, attrs map[string]string) {
	wrapped, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	wrapped.span.SetAttributes(attributes(attrs)...)
	wrapped.SetStatus(status)
	wrapped.span.End()
}

// SpanContext wraps an OpenTelemetry span as a persistence.SpanContext.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps persistence status strings to span status codes.
// Unknown statuses are kept as a "status" attribute.
func (s *SpanContext) SetStatus(status string) {
	switch status {
	case persistence.StatusSuccess, "ok":
		s.span.SetStatus(codes.Ok, "")
	case persistence.StatusError, "failed":
		s.span.SetStatus(codes.Error, statusDescriptionFailed)
	case "timeout":
		s.span.SetStatus(codes.Error, statusDescriptionTimeout)
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, statusDescriptionCancel)
	default:
		s.span.SetAttributes(attribute.String(attrStatus, status))
	}
}

// AddAttribute adds a string attribute to the span.
func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var (
	_ persistence.TracingCollector = (*TracingCollector)(nil)
	_ persistence.SpanContext      = (*SpanContext)(nil)
)
