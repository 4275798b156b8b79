// Package resources provides MCP resources for exposing user and session data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the mailbox profile and the account's cold-email settings.
package resources
