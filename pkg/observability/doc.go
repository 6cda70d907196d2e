// Package observability provides logging, metrics, health checks, and
// graceful shutdown for the organization service.
//
// Logging is structured JSON on top of log/slog. Metrics are Prometheus
// collectors exposed on the health port. Health checks cover the document
// store and the message bus. OpenTelemetry tracing and metrics export can
// be enabled via configuration and are off by default.
package observability
