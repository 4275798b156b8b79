package llm

import (
	"errors"
	"fmt"

	"github.com/teemow/coldguard/internal/config"
)

// Provider identifies a language-model provider.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGoogle     Provider = "google"
	ProviderGroq       Provider = "groq"
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"

	// ProviderAuto is a configuration sentinel, not a real provider.
	// When selected it is replaced by a randomly chosen provider that has
	// an API key available, spreading load across accounts.
	ProviderAuto Provider = "auto"
)

// Tier selects a routing tier. The default tier serves classification;
// the economy and chat tiers may be pointed at cheaper or more
// conversational models via the environment.
type Tier string

const (
	TierDefault Tier = "default"
	TierEconomy Tier = "economy"
	TierChat    Tier = "chat"
)

// Default model per provider, used when no model is configured.
const (
	ModelGPT4o               = "gpt-4o"
	ModelClaudeSonnet4       = "claude-sonnet-4-20250514"
	ModelGemini20Flash       = "gemini-2.0-flash"
	ModelLlama33_70B         = "llama-3.3-70b-versatile"
	ModelOpenRouterSonnet4  = "anthropic/claude-sonnet-4"
	ModelOpenRouterGemini25 = "google/gemini-2.5-pro"
)

// Provider base URLs. Google and Groq expose OpenAI-compatible endpoints;
// Anthropic uses its native messages API.
const (
	baseURLOpenAI     = "https://api.openai.com/v1"
	baseURLAnthropic  = "https://api.anthropic.com/v1"
	baseURLGoogle     = "https://generativelanguage.googleapis.com/v1beta/openai"
	baseURLGroq       = "https://api.groq.com/openai/v1"
	baseURLOpenRouter = "https://openrouter.ai/api/v1"
)

var (
	// ErrUnsupportedProvider indicates a provider name outside the known set.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrProviderNotConfigured indicates the provider is known but has no
	// API key (or, for ollama, no model) available.
	ErrProviderNotConfigured = errors.New("llm provider not configured")

	// ErrInvalidResponse indicates the model returned output that does not
	// satisfy the requested schema.
	ErrInvalidResponse = errors.New("invalid llm response")
)

// ParseProvider validates a provider name. The auto sentinel parses like a
// provider so it can be configured anywhere a provider name is accepted.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderGroq,
		ProviderOpenRouter, ProviderOllama, ProviderAuto:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
}

// defaultModel returns the built-in default model for a provider.
// Ollama has no default; its model must be configured.
func defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return ModelGPT4o
	case ProviderAnthropic:
		return ModelClaudeSonnet4
	case ProviderGoogle:
		return ModelGemini20Flash
	case ProviderGroq:
		return ModelLlama33_70B
	case ProviderOpenRouter:
		return ModelOpenRouterSonnet4
	default:
		return ""
	}
}

// providerKey returns the process-level API key for a provider, or empty
// when none is configured. Ollama needs no key and always returns empty.
func providerKey(cfg config.RouterConfig, p Provider) string {
	switch p {
	case ProviderOpenAI:
		return cfg.OpenAIKey
	case ProviderAnthropic:
		return cfg.AnthropicKey
	case ProviderGoogle:
		return cfg.GoogleKey
	case ProviderGroq:
		return cfg.GroqKey
	case ProviderOpenRouter:
		return cfg.OpenRouterKey
	default:
		return ""
	}
}

// hasCredentials reports whether a provider is usable with process-level
// configuration alone.
func hasCredentials(cfg config.RouterConfig, p Provider) bool {
	if p == ProviderOllama {
		return cfg.OllamaModel != ""
	}
	return providerKey(cfg, p) != ""
}
