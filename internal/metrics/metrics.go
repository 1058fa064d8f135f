package metrics

// Package metrics provides Prometheus metrics collection for the
// transaction engine services.
//
// This package includes:
// - HTTP request metrics (count, latency, errors)
// - Engine flow and coin-selection metrics
// - Tracker confirmation metrics
// - Metrics HTTP server on configurable port
// - Echo middleware for automatic request instrumentation
//
// Usage:
//   import "github.com/sailwallet/txengine/internal/metrics"
//
//   metricsServer := metrics.StartMetricsServer("88", logger)
//   defer metricsServer.Stop(context.Background())
//
//   e.Use(metrics.HTTPMiddleware())
