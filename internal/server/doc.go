// Package server provides the MCP server context, health checks, and
// the dedicated metrics server for the coldguard application.
//
// # Key Components
//
// ServerContext manages the shared dependencies of the MCP server: the
// verdict store, the model router and invoker, and per-account Gmail
// clients with lazy initialization and caching.
//
// HealthChecker exposes Kubernetes-style liveness and readiness probes
// (/healthz, /readyz, /healthz/detailed) for the HTTP transport.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolating
// operational metrics from application traffic.
package server
