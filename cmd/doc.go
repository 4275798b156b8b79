// Package cmd implements the command-line interface for coldguard.
//
// This package provides the following commands:
//   - classify: Classify inbox threads as cold emails and apply blocker actions
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Authorize coldguard to access a Google account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The classify command is the default command when no subcommand is specified.
package cmd
