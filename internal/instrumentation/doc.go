// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the coldguard MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, classifications, and model calls
//   - Distributed tracing for request flows and mailbox operations
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Classification Metrics:
//   - cold_email_classifications_total: Counter of classifications by reason, verdict, status
//   - cold_email_classification_duration_seconds: Histogram of classification durations
//
// Model Invocation Metrics:
//   - llm_requests_total: Counter of language model requests by provider, model, status
//   - llm_request_duration_seconds: Histogram of model request durations
//
// Mailbox Action Metrics:
//   - mail_actions_total: Counter of blocker actions (label, archive, mark_read) by status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Mailbox backend calls (mail.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: coldguard)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "coldguard",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//
//	// Record a classification outcome
//	recorder.RecordClassification(ctx, "ai", true, true, time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "coldemail_classify_message", "success", time.Since(start))
package instrumentation
