package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the process-wide configuration for coldguard.
// All values are sourced from environment variables so the binary can run
// unchanged as a CLI, an MCP server on stdio, or a long-lived HTTP service.
type Config struct {
	// Router configures how classification requests are mapped to a
	// language-model provider and model.
	Router RouterConfig

	// Storage configures the local SQLite database.
	Storage StorageConfig
}

// RouterConfig holds the model routing configuration.
//
// Routing is tiered: the default tier is used for classification, while the
// economy and chat tiers may point at cheaper or more conversational models.
// A tier override is only honored when both its provider and model are set
// and the provider's API key is available; otherwise the router falls back
// to the default tier.
type RouterConfig struct {
	// DefaultProvider is the provider used when an account has no
	// provider of its own (default: "anthropic"). The special value
	// "auto" spreads load across all providers with available keys.
	DefaultProvider string

	// DefaultModel is the model for the default provider. Empty means
	// the provider's built-in default model.
	DefaultModel string

	// DefaultOpenRouterProviders is a comma-separated list of upstream
	// providers OpenRouter may route to for the default tier.
	DefaultOpenRouterProviders string

	// EconomyProvider and EconomyModel configure the economy tier.
	// Both must be set for the tier to take effect.
	EconomyProvider string
	EconomyModel    string

	// EconomyOpenRouterProviders is the OpenRouter routing order for the
	// economy tier.
	EconomyOpenRouterProviders string

	// ChatProvider and ChatModel configure the chat tier.
	ChatProvider string
	ChatModel    string

	// ChatOpenRouterProviders is the OpenRouter routing order for the
	// chat tier.
	ChatOpenRouterProviders string

	// Per-provider API keys. A provider without a key cannot be selected
	// unless the account supplies its own key.
	OpenAIKey     string
	AnthropicKey  string
	GoogleKey     string
	GroqKey       string
	OpenRouterKey string

	// OllamaBaseURL is the base URL of a local Ollama server's
	// OpenAI-compatible API (default: "http://localhost:11434/v1").
	OllamaBaseURL string

	// OllamaModel is the model served by Ollama. Ollama has no sensible
	// default model, so this must be set for the ollama provider.
	OllamaModel string
}

// StorageConfig holds the SQLite storage configuration.
type StorageConfig struct {
	// Path is the SQLite database file path
	// (default: <user cache dir>/coldguard/coldguard.db).
	Path string
}

// DefaultConfig returns a Config populated from environment variables,
// falling back to built-in defaults.
func DefaultConfig() Config {
	return Config{
		Router: RouterConfig{
			DefaultProvider:            getEnvOrDefault("DEFAULT_LLM_PROVIDER", "anthropic"),
			DefaultModel:               getEnvOrDefault("DEFAULT_LLM_MODEL", ""),
			DefaultOpenRouterProviders: getEnvOrDefault("DEFAULT_OPENROUTER_PROVIDERS", ""),
			EconomyProvider:            getEnvOrDefault("ECONOMY_LLM_PROVIDER", ""),
			EconomyModel:               getEnvOrDefault("ECONOMY_LLM_MODEL", ""),
			EconomyOpenRouterProviders: getEnvOrDefault("ECONOMY_OPENROUTER_PROVIDERS", ""),
			ChatProvider:               getEnvOrDefault("CHAT_LLM_PROVIDER", ""),
			ChatModel:                  getEnvOrDefault("CHAT_LLM_MODEL", ""),
			ChatOpenRouterProviders:    getEnvOrDefault("CHAT_OPENROUTER_PROVIDERS", ""),
			OpenAIKey:                  getEnvOrDefault("OPENAI_API_KEY", ""),
			AnthropicKey:               getEnvOrDefault("ANTHROPIC_API_KEY", ""),
			GoogleKey:                  getEnvOrDefault("GOOGLE_API_KEY", ""),
			GroqKey:                    getEnvOrDefault("GROQ_API_KEY", ""),
			OpenRouterKey:              getEnvOrDefault("OPENROUTER_API_KEY", ""),
			OllamaBaseURL:              getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
			OllamaModel:                getEnvOrDefault("OLLAMA_MODEL", ""),
		},
		Storage: StorageConfig{
			Path: getEnvOrDefault("COLDGUARD_DB_PATH", defaultDBPath()),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Router.Validate(); err != nil {
		return err
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must not be empty")
	}
	return nil
}

// Validate checks if the routing configuration is valid.
// It verifies structural consistency only; whether a provider's API key is
// actually present is decided at selection time so that tier overrides can
// degrade gracefully.
func (r *RouterConfig) Validate() error {
	if r.DefaultProvider == "" {
		return fmt.Errorf("default provider must not be empty")
	}
	if r.EconomyProvider != "" && r.EconomyModel == "" {
		return fmt.Errorf("ECONOMY_LLM_PROVIDER is set but ECONOMY_LLM_MODEL is empty")
	}
	if r.ChatProvider != "" && r.ChatModel == "" {
		return fmt.Errorf("CHAT_LLM_PROVIDER is set but CHAT_LLM_MODEL is empty")
	}
	return nil
}

// OpenRouterOrder splits a comma-separated OpenRouter provider list into a
// slice, trimming whitespace and dropping empty entries.
func OpenRouterOrder(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	order := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	if len(order) == 0 {
		return nil
	}
	return order
}

// defaultDBPath returns the default database location under the user cache
// directory, falling back to the working directory when no cache dir exists.
func defaultDBPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "coldguard.db"
	}
	return filepath.Join(cacheDir, "coldguard", "coldguard.db")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
