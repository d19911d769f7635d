package helper

import (
	"context"
	"sync"

	"github.com/bruhsty/bruhsty/persistence"
)

// SpySpanContext records what a component sets on its span.
type SpySpanContext struct {
	name       string
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements persistence.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements persistence.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

// SpySpanRecord represents a started span, with its end state once finished.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	EndAttributes   map[string]string
	Status          string
	Finished        bool
}

// TracingCollectorSpy is a TracingCollector implementation that captures spans for testing.
type TracingCollectorSpy struct {
	spans       []*SpySpanRecord
	contexts    map[*SpySpanContext]*SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{
		contexts:    make(map[*SpySpanContext]*SpySpanRecord),
		recordCalls: recordCalls,
	}
}

// StartSpan implements persistence.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, persistence.SpanContext) {
	spanCtx := &SpySpanContext{name: name}
	if !s.recordCalls {
		return ctx, spanCtx
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &SpySpanRecord{Name: name, StartAttributes: copyLabels(attrs)}
	s.spans = append(s.spans, record)
	s.contexts[spanCtx] = record

	return ctx, spanCtx
}

// FinishSpan implements persistence.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx persistence.SpanContext, status string, attrs map[string]string) {
	spySpan, ok := spanCtx.(*SpySpanContext)
	if !ok || !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.contexts[spySpan]
	if !ok {
		return
	}

	record.Status = status
	record.EndAttributes = copyLabels(attrs)
	record.Finished = true
}

// GetSpanRecords returns copies of all span records.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, 0, len(s.spans))
	for _, record := range s.spans {
		records = append(records, *record)
	}

	return records
}

// HasFinishedSpan checks if a span with name was finished with status.
func (s *TracingCollectorSpy) HasFinishedSpan(name, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.spans {
		if record.Name == name && record.Finished && record.Status == status {
			return true
		}
	}

	return false
}

var _ persistence.TracingCollector = (*TracingCollectorSpy)(nil)
