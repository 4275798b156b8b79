// Package logging provides structured logging utilities for the coldguard application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (sender address anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "coldemail.classify")
//	logger.Info("classification completed",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("known cold sender",
//	    logging.Sender(email.From))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Sender addresses are hashed to prevent PII leakage while allowing correlation
//   - API keys are never logged directly
package logging
