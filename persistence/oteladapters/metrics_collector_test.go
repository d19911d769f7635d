package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bruhsty/bruhsty/persistence/oteladapters"
)

func givenMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	require.Failf(t, "metric not found", "metric %q was not collected", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration_Records_Seconds_In_Histogram(t *testing.T) {
	collector, reader := givenMetricsCollector()

	collector.RecordDuration("unit_of_work_commit_duration_seconds", 150*time.Millisecond, map[string]string{
		"operation": "commit",
		"status":    "success",
	})

	m := findMetric(t, collect(t, reader), "unit_of_work_commit_duration_seconds")
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected a float64 histogram")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)
	assert.Equal(t, "s", m.Unit)

	expected := attribute.NewSet(attribute.String("operation", "commit"), attribute.String("status", "success"))
	assert.True(t, dataPoint.Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_Accumulates_Per_Label_Set(t *testing.T) {
	collector, reader := givenMetricsCollector()
	failed := map[string]string{"operation": "commit", "error_type": "commit_failed"}
	published := map[string]string{"operation": "publish", "error_type": "publish_failed"}

	collector.IncrementCounter("unit_of_work_errors_total", failed)
	collector.IncrementCounterContext(context.Background(), "unit_of_work_errors_total", failed)
	collector.IncrementCounter("unit_of_work_errors_total", published)

	sum, ok := findMetric(t, collect(t, reader), "unit_of_work_errors_total").Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum")
	require.Len(t, sum.DataPoints, 2)

	totals := make(map[string]int64)
	for _, dataPoint := range sum.DataPoints {
		operation, _ := dataPoint.Attributes.Value("operation")
		totals[operation.AsString()] = dataPoint.Value
	}

	assert.Equal(t, map[string]int64{"commit": 2, "publish": 1}, totals)
}

func Test_MetricsCollector_RecordValue_Keeps_Last_Value(t *testing.T) {
	collector, reader := givenMetricsCollector()
	labels := map[string]string{"operation": "publish"}

	collector.RecordValue("unit_of_work_events_published", 3, labels)
	collector.RecordValueContext(context.Background(), "unit_of_work_events_published", 5, labels)

	gauge, ok := findMetric(t, collect(t, reader), "unit_of_work_events_published").Data.(metricdata.Gauge[float64])
	require.True(t, ok, "expected a float64 gauge")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(5), gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_Is_Safe_For_Concurrent_Use(t *testing.T) {
	collector, reader := givenMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			collector.IncrementCounter("sqlengine_errors_total", map[string]string{"operation": "find"})
		}()
	}
	wg.Wait()

	sum, ok := findMetric(t, collect(t, reader), "sqlengine_errors_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(16), sum.DataPoints[0].Value)
}
