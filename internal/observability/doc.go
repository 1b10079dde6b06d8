// Package observability bundles the logging, metrics, and tracing
// facilities shared by the performance-calculation core.
//
// Logging is structured logging over zap behind a small Logger interface,
// metrics are Prometheus collectors registered on a private registry, and
// tracing is OpenTelemetry with an optional OTLP gRPC exporter.
package observability
