// Package helper provides test doubles and arrangement helpers shared by the tests of this module.
//
// The spies record what the observability interfaces of the persistence package receive:
//   - LogHandlerSpy: a slog.Handler capturing records, usable through slog.New
//   - MetricsCollectorSpy: captures durations, counters and values
//   - TracingCollectorSpy: captures started and finished spans
//
// OpenSQLiteDB opens a private SQLite database file for a single test; FakeClock is a settable clock.
package helper
