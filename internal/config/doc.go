// Package config loads the coldguard process configuration from
// environment variables.
//
// Configuration is split into routing (which language-model provider and
// model serve each request tier) and storage (the local SQLite database).
// All settings have working defaults so the binary runs without any
// environment at all, using Anthropic as the default provider when its
// API key is present.
package config
