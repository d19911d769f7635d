package sqlengine

import (
	"fmt"

	"github.com/bruhsty/bruhsty/persistence"
)

// Dialect names the SQL flavor statements are rendered for.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	return d == DialectPostgres || d == DialectSQLite
}

// Option defines a functional option for configuring a Transactor.
type Option func(*Transactor) error

// WithDialect sets the dialect statements are rendered for. The default is DialectPostgres.
func WithDialect(dialect Dialect) Option {
	return func(t *Transactor) error {
		if !dialect.Valid() {
			return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
		}

		t.dialect = dialect

		return nil
	}
}

// WithLogger sets the logger for the Transactor and the storages bound to its transactions.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts and durations of repository operations (production-safe)
// Warn level: non-critical issues like failing to close rows
// Error level: failures that abort an operation.
func WithLogger(logger persistence.Logger) Option {
	return func(t *Transactor) error {
		return persistence.WithLogger(logger)(&t.instrumentation)
	}
}

// WithContextualLogger sets the contextual logger, which receives log messages together with
// the context of the operation, e.g. for trace correlation.
func WithContextualLogger(logger persistence.ContextualLogger) Option {
	return func(t *Transactor) error {
		return persistence.WithContextualLogger(logger)(&t.instrumentation)
	}
}

// WithMetrics sets the metrics collector, which receives statement durations, row counts and errors.
func WithMetrics(collector persistence.MetricsCollector) Option {
	return func(t *Transactor) error {
		return persistence.WithMetrics(collector)(&t.instrumentation)
	}
}

// WithTracing sets the tracing collector. Every repository operation runs in its own span.
func WithTracing(collector persistence.TracingCollector) Option {
	return func(t *Transactor) error {
		return persistence.WithTracing(collector)(&t.instrumentation)
	}
}

// WithInstrumentation applies persistence options, so one set of observability options can
// configure the Transactor, the unit of work and the message bus alike.
func WithInstrumentation(options ...persistence.Option) Option {
	return func(t *Transactor) error {
		for _, option := range options {
			if err := option(&t.instrumentation); err != nil {
				return err
			}
		}

		return nil
	}
}
