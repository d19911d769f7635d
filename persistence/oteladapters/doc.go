// Package oteladapters implements the observability interfaces of the persistence package
// with OpenTelemetry: metrics become instruments of a metric.Meter, spans come from a
// trace.Tracer, and contextual logs go through the otelslog bridge or the log API.
package oteladapters
