package persistence

import (
	"context"
	"math"
	"time"
)

// Instrumentation bundles the optional observability collaborators of a component.
// Every method is safe to call when the corresponding collaborator is nil.
type Instrumentation struct {
	Logger           Logger
	ContextualLogger ContextualLogger
	Metrics          MetricsCollector
	Tracing          TracingCollector
}

// Option configures the Instrumentation of a component.
type Option func(*Instrumentation) error

// WithLogger sets the logger.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation summaries with counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that abort an operation.
func WithLogger(logger Logger) Option {
	return func(i *Instrumentation) error {
		i.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger, which receives the same messages as the Logger
// together with the context of the operation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(i *Instrumentation) error {
		i.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector MetricsCollector) Option {
	return func(i *Instrumentation) error {
		i.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector TracingCollector) Option {
	return func(i *Instrumentation) error {
		i.Tracing = collector
		return nil
	}
}

// NewInstrumentation applies options to an empty Instrumentation.
func NewInstrumentation(options ...Option) (Instrumentation, error) {
	var instrumentation Instrumentation

	for _, option := range options {
		if err := option(&instrumentation); err != nil {
			return Instrumentation{}, err
		}
	}

	return instrumentation, nil
}

// LogDebug logs at debug level to every configured logger.
func (i Instrumentation) LogDebug(ctx context.Context, msg string, args ...any) {
	if i.Logger != nil {
		i.Logger.Debug(msg, args...)
	}

	if i.ContextualLogger != nil {
		i.ContextualLogger.DebugContext(ctx, msg, args...)
	}
}

// LogInfo logs at info level to every configured logger.
func (i Instrumentation) LogInfo(ctx context.Context, msg string, args ...any) {
	if i.Logger != nil {
		i.Logger.Info(msg, args...)
	}

	if i.ContextualLogger != nil {
		i.ContextualLogger.InfoContext(ctx, msg, args...)
	}
}

// LogWarn logs at warn level to every configured logger.
func (i Instrumentation) LogWarn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{"error", err.Error()}, args...)

	if i.Logger != nil {
		i.Logger.Warn(msg, allArgs...)
	}

	if i.ContextualLogger != nil {
		i.ContextualLogger.WarnContext(ctx, msg, allArgs...)
	}
}

// LogError logs err at error level to every configured logger.
func (i Instrumentation) LogError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{"error", err.Error()}, args...)

	if i.Logger != nil {
		i.Logger.Error(msg, allArgs...)
	}

	if i.ContextualLogger != nil {
		i.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// RecordDuration records a duration, preferring the context-aware collector method.
func (i Instrumentation) RecordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if i.Metrics == nil {
		return
	}

	labels := map[string]string{LabelOperation: operation, LabelStatus: status}

	if contextual, ok := i.Metrics.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	i.Metrics.RecordDuration(metric, duration, labels)
}

// RecordValue records a value, preferring the context-aware collector method.
func (i Instrumentation) RecordValue(ctx context.Context, metric string, value float64, operation, status string) {
	if i.Metrics == nil {
		return
	}

	labels := map[string]string{LabelOperation: operation, LabelStatus: status}

	if contextual, ok := i.Metrics.(ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	i.Metrics.RecordValue(metric, value, labels)
}

// RecordError increments the error counter metric for operation.
func (i Instrumentation) RecordError(ctx context.Context, metric, operation, errorType string) {
	if i.Metrics == nil {
		return
	}

	labels := map[string]string{LabelOperation: operation, LabelStatus: StatusError, LabelErrorType: errorType}

	if contextual, ok := i.Metrics.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	i.Metrics.IncrementCounter(metric, labels)
}

// StartSpan starts a span when tracing is configured. The returned SpanContext is nil otherwise.
func (i Instrumentation) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if i.Tracing == nil {
		return ctx, nil
	}

	return i.Tracing.StartSpan(ctx, name, attrs)
}

// FinishSpan finishes span with status. A nil span is ignored.
func (i Instrumentation) FinishSpan(span SpanContext, status string, attrs map[string]string) {
	if i.Tracing == nil || span == nil {
		return
	}

	i.Tracing.FinishSpan(span, status, attrs)
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
