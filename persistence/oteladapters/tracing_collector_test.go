package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/oteladapters"
)

func givenTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_Records_Start_And_Finish_Attributes(t *testing.T) {
	collector, exporter := givenTracingCollector()

	ctx, span := collector.StartSpan(context.Background(), "unit_of_work.commit", map[string]string{"operation": "commit"})
	require.NotNil(t, ctx)
	collector.FinishSpan(span, persistence.StatusSuccess, map[string]string{"event_count": "3"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	operation, ok := spanAttribute(spans[0], "operation")
	assert.True(t, ok)
	assert.Equal(t, "commit", operation)

	count, ok := spanAttribute(spans[0], "event_count")
	assert.True(t, ok)
	assert.Equal(t, "3", count)

	assert.Equal(t, "unit_of_work.commit", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func Test_TracingCollector_Maps_Status_To_Span_Codes(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: persistence.StatusSuccess, expectedCode: codes.Ok},
		{status: persistence.StatusError, expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "canceled", expectedCode: codes.Error},
		{status: "skipped", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			collector, exporter := givenTracingCollector()

			_, span := collector.StartSpan(context.Background(), "sqlengine.find", nil)
			collector.FinishSpan(span, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_Keeps_Unknown_Status_As_Attribute(t *testing.T) {
	collector, exporter := givenTracingCollector()

	_, span := collector.StartSpan(context.Background(), "sqlengine.find", nil)
	collector.FinishSpan(span, "skipped", nil)

	status, ok := spanAttribute(exporter.GetSpans()[0], "status")
	assert.True(t, ok)
	assert.Equal(t, "skipped", status)
}

func Test_TracingCollector_Nests_Spans_Through_Context(t *testing.T) {
	collector, exporter := givenTracingCollector()

	ctx, parent := collector.StartSpan(context.Background(), "unit_of_work.commit", nil)
	_, child := collector.StartSpan(ctx, "sqlengine.save", nil)
	collector.FinishSpan(child, persistence.StatusSuccess, nil)
	collector.FinishSpan(parent, persistence.StatusSuccess, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func Test_SpanContext_AddAttribute(t *testing.T) {
	collector, exporter := givenTracingCollector()

	_, span := collector.StartSpan(context.Background(), "messagebus.publish", nil)
	span.AddAttribute("event_type", "EmailVerified")
	collector.FinishSpan(span, persistence.StatusSuccess, nil)

	eventType, ok := spanAttribute(exporter.GetSpans()[0], "event_type")
	assert.True(t, ok)
	assert.Equal(t, "EmailVerified", eventType)
	assert.Contains(t, exporter.GetSpans()[0].Attributes, attribute.String("event_type", "EmailVerified"))
}
