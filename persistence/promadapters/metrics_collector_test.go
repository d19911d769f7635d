package promadapters_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/memengine"
	"github.com/bruhsty/bruhsty/persistence/promadapters"
)

func Test_MetricsCollector_IncrementCounter_Counts_Per_Label_Set(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.IncrementCounter("unit_of_work_errors_total", map[string]string{"operation": "commit", "error_type": "commit_failed"})
	collector.IncrementCounter("unit_of_work_errors_total", map[string]string{"operation": "commit", "error_type": "commit_failed"})
	collector.IncrementCounter("unit_of_work_errors_total", map[string]string{"operation": "publish", "error_type": "publish_failed"})

	expected := `
# HELP bruhsty_unit_of_work_errors_total persistence operation counter
# TYPE bruhsty_unit_of_work_errors_total counter
bruhsty_unit_of_work_errors_total{error_type="commit_failed",operation="commit"} 2
bruhsty_unit_of_work_errors_total{error_type="publish_failed",operation="publish"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "bruhsty_unit_of_work_errors_total"))
}

func Test_MetricsCollector_RecordValue_Sets_Gauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithNamespace("test"))

	collector.RecordValue("unit_of_work_events_published", 4, map[string]string{"operation": "publish"})
	collector.RecordValue("unit_of_work_events_published", 2, map[string]string{"operation": "publish"})

	expected := `
# HELP test_unit_of_work_events_published persistence current value
# TYPE test_unit_of_work_events_published gauge
test_unit_of_work_events_published{operation="publish"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_of_work_events_published"))
}

func Test_MetricsCollector_RecordDuration_Observes_Histogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithBuckets([]float64{0.1, 1}))

	collector.RecordDuration("sqlengine_statement_duration_seconds", 50*time.Millisecond, map[string]string{"operation": "find", "status": "success"})
	collector.RecordDuration("sqlengine_statement_duration_seconds", 2*time.Second, map[string]string{"operation": "find", "status": "success"})

	expected := `
# HELP bruhsty_sqlengine_statement_duration_seconds persistence operation duration in seconds
# TYPE bruhsty_sqlengine_statement_duration_seconds histogram
bruhsty_sqlengine_statement_duration_seconds_bucket{operation="find",status="success",le="0.1"} 1
bruhsty_sqlengine_statement_duration_seconds_bucket{operation="find",status="success",le="1"} 1
bruhsty_sqlengine_statement_duration_seconds_bucket{operation="find",status="success",le="+Inf"} 2
bruhsty_sqlengine_statement_duration_seconds_sum{operation="find",status="success"} 2.05
bruhsty_sqlengine_statement_duration_seconds_count{operation="find",status="success"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "bruhsty_sqlengine_statement_duration_seconds"))
}

func Test_MetricsCollector_Drops_Observations_With_Other_Label_Names(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.IncrementCounter("messagebus_errors_total", map[string]string{"operation": "EmailVerified"})
	collector.IncrementCounter("messagebus_errors_total", map[string]string{"event": "EmailVerified"})

	count, err := testutil.GatherAndCount(registry, "bruhsty_messagebus_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_MetricsCollector_Reuses_Vectors_Registered_By_Another_Collector(t *testing.T) {
	registry := prometheus.NewRegistry()
	labels := map[string]string{"operation": "commit"}

	promadapters.NewMetricsCollector(registry).IncrementCounter("unit_of_work_errors_total", labels)
	promadapters.NewMetricsCollector(registry).IncrementCounter("unit_of_work_errors_total", labels)

	expected := `
# HELP bruhsty_unit_of_work_errors_total persistence operation counter
# TYPE bruhsty_unit_of_work_errors_total counter
bruhsty_unit_of_work_errors_total{operation="commit"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "bruhsty_unit_of_work_errors_total"))
}

func Test_Handler_Serves_Unit_Of_Work_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	store, err := memengine.NewStore()
	require.NoError(t, err)

	uow, err := persistence.NewUnitOfWork[*memengine.Tx, noRepositories](
		store,
		func(*memengine.Tx) noRepositories { return noRepositories{} },
		persistence.PublisherFunc(func(context.Context, ...persistence.DomainEvent) error { return nil }),
		persistence.WithMetrics(collector),
	)
	require.NoError(t, err)
	require.NoError(t, uow.Execute(context.Background(), func(context.Context, noRepositories) error { return nil }))

	server := httptest.NewServer(promadapters.Handler(registry))
	defer server.Close()

	response, err := http.Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bruhsty_unit_of_work_commit_duration_seconds_count{operation="commit",status="success"} 1`)
	assert.Contains(t, string(body), `bruhsty_unit_of_work_events_published{operation="publish",status="success"} 0`)
}

type noRepositories struct{}

func (noRepositories) EventCollectors() []persistence.EventCollector { return nil }
