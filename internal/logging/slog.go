package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyAccount   = "account"
	KeySender    = "sender_hash"
	KeyProvider  = "provider"
	KeyModel     = "model"
	KeyTier      = "tier"
	KeyReason    = "reason"
	KeyMessageID = "message_id"
	KeyThreadID  = "thread_id"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithAccount returns a logger with the account attribute set.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Account returns a slog attribute for the account name.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Provider returns a slog attribute for an LLM provider tag.
func Provider(provider string) slog.Attr {
	return slog.String(KeyProvider, provider)
}

// Model returns a slog attribute for an LLM model identifier.
func Model(model string) slog.Attr {
	return slog.String(KeyModel, model)
}

// Tier returns a slog attribute for the routing tier.
func Tier(tier string) slog.Attr {
	return slog.String(KeyTier, tier)
}

// Reason returns a slog attribute for a classification reason.
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// MessageID returns a slog attribute for a mail message identifier.
func MessageID(id string) slog.Attr {
	return slog.String(KeyMessageID, id)
}

// ThreadID returns a slog attribute for a mail thread identifier.
func ThreadID(id string) slog.Attr {
	return slog.String(KeyThreadID, id)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an operation duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeSender returns a hashed representation of a sender address for
// logging purposes. This allows correlation of log entries without exposing PII.
func AnonymizeSender(address string) string {
	if address == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(address))
	return "sender:" + hex.EncodeToString(hash[:8])
}

// Sender returns a slog attribute with the anonymized sender address.
// This is a convenience function to reduce repetition in logging calls and ensure
// consistent attribute naming across the codebase.
//
// Usage:
//
//	logger.Info("classification completed", logging.Sender(email.From))
func Sender(address string) slog.Attr {
	return slog.String(KeySender, AnonymizeSender(address))
}

// SanitizeKey returns a masked version of an API key for logging.
// It returns a length indicator without exposing any key content,
// as even partial key prefixes can aid attacks.
func SanitizeKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[key:%d chars]", len(key))
}

// ExtractDomain extracts the domain part from an email address.
// This is useful for lower-cardinality logging where the full address would
// create too many unique values.
func ExtractDomain(address string) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the sender domain (lower cardinality than the full address).
func Domain(address string) slog.Attr {
	return slog.String("sender_domain", ExtractDomain(address))
}
