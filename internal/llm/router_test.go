package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/coldguard/internal/config"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Provider
		wantErr bool
	}{
		{name: "openai", input: "openai", want: ProviderOpenAI},
		{name: "anthropic", input: "anthropic", want: ProviderAnthropic},
		{name: "google", input: "google", want: ProviderGoogle},
		{name: "groq", input: "groq", want: ProviderGroq},
		{name: "openrouter", input: "openrouter", want: ProviderOpenRouter},
		{name: "ollama", input: "ollama", want: ProviderOllama},
		{name: "auto sentinel", input: "auto", want: ProviderAuto},
		{name: "unknown", input: "bedrock", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedProvider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouterSelect_DefaultTier(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.RouterConfig
		user         UserConfig
		wantProvider Provider
		wantModel    string
		wantKey      string
		wantErr      error
	}{
		{
			name:         "process default provider and model",
			cfg:          config.RouterConfig{DefaultProvider: "anthropic", AnthropicKey: "sk-proc"},
			wantProvider: ProviderAnthropic,
			wantModel:    ModelClaudeSonnet4,
			wantKey:      "sk-proc",
		},
		{
			name: "explicit default model wins over built-in default",
			cfg: config.RouterConfig{
				DefaultProvider: "anthropic",
				DefaultModel:    "claude-3-5-haiku-20241022",
				AnthropicKey:    "sk-proc",
			},
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-3-5-haiku-20241022",
			wantKey:      "sk-proc",
		},
		{
			name: "user key and provider win over process default",
			cfg:  config.RouterConfig{DefaultProvider: "anthropic", AnthropicKey: "sk-proc"},
			user: UserConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-user"},
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4o-mini",
			wantKey:      "sk-user",
		},
		{
			name: "user provider without model gets provider default",
			cfg:  config.RouterConfig{DefaultProvider: "anthropic", AnthropicKey: "sk-proc"},
			user: UserConfig{Provider: "groq", APIKey: "gsk-user"},
			wantProvider: ProviderGroq,
			wantModel:    ModelLlama33_70B,
			wantKey:      "gsk-user",
		},
		{
			name: "user provider without key is ignored",
			cfg: config.RouterConfig{
				DefaultProvider: "anthropic",
				AnthropicKey:    "sk-proc",
				GroqKey:         "gsk-proc",
			},
			user:         UserConfig{Provider: "groq"},
			wantProvider: ProviderAnthropic,
			wantModel:    ModelClaudeSonnet4,
			wantKey:      "sk-proc",
		},
		{
			name: "user key alone keeps default provider but not default model",
			cfg: config.RouterConfig{
				DefaultProvider: "anthropic",
				DefaultModel:    "claude-3-5-haiku-20241022",
				AnthropicKey:    "sk-proc",
			},
			user:         UserConfig{APIKey: "sk-user"},
			wantProvider: ProviderAnthropic,
			wantModel:    ModelClaudeSonnet4,
			wantKey:      "sk-user",
		},
		{
			name:    "no key anywhere",
			cfg:     config.RouterConfig{DefaultProvider: "openai"},
			wantErr: ErrProviderNotConfigured,
		},
		{
			name:    "unknown user provider",
			cfg:     config.RouterConfig{DefaultProvider: "anthropic", AnthropicKey: "sk-proc"},
			user:    UserConfig{Provider: "watson", APIKey: "k"},
			wantErr: ErrUnsupportedProvider,
		},
		{
			name: "ollama needs no key but needs a model",
			cfg: config.RouterConfig{
				DefaultProvider: "ollama",
				OllamaBaseURL:   "http://localhost:11434/v1",
				OllamaModel:     "llama3.2",
			},
			wantProvider: ProviderOllama,
			wantModel:    "llama3.2",
		},
		{
			name: "ollama without model",
			cfg: config.RouterConfig{
				DefaultProvider: "ollama",
				OllamaBaseURL:   "http://localhost:11434/v1",
			},
			wantErr: ErrProviderNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(tt.cfg)
			sel, err := r.Select(TierDefault, tt.user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TierDefault, sel.Tier)
			assert.Equal(t, tt.wantProvider, sel.Provider)
			assert.Equal(t, tt.wantModel, sel.Model)
			assert.Equal(t, tt.wantKey, sel.APIKey)
			assert.NotEmpty(t, sel.BaseURL)
		})
	}
}

func TestRouterSelect_EconomyTier(t *testing.T) {
	t.Run("fully configured override applies", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "anthropic",
			AnthropicKey:    "sk-proc",
			EconomyProvider: "google",
			EconomyModel:    "gemini-2.0-flash-lite",
			GoogleKey:       "g-key",
		})

		sel, err := r.Select(TierEconomy, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderGoogle, sel.Provider)
		assert.Equal(t, "gemini-2.0-flash-lite", sel.Model)
		assert.Equal(t, "g-key", sel.APIKey)
	})

	t.Run("unset tier behaves like default tier", func(t *testing.T) {
		cfg := config.RouterConfig{DefaultProvider: "anthropic", AnthropicKey: "sk-proc"}
		r := NewRouter(cfg)

		economy, err := r.Select(TierEconomy, UserConfig{})
		require.NoError(t, err)
		def, err := r.Select(TierDefault, UserConfig{})
		require.NoError(t, err)

		assert.Equal(t, def.Provider, economy.Provider)
		assert.Equal(t, def.Model, economy.Model)
		assert.Equal(t, def.APIKey, economy.APIKey)
	})

	t.Run("missing tier key falls back to default tier", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "anthropic",
			AnthropicKey:    "sk-proc",
			EconomyProvider: "groq",
			EconomyModel:    ModelLlama33_70B,
			// no GroqKey
		})

		sel, err := r.Select(TierEconomy, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, sel.Provider)
		assert.Equal(t, "sk-proc", sel.APIKey)
	})

	t.Run("tier override ignores user key", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "anthropic",
			AnthropicKey:    "sk-proc",
			ChatProvider:    "openai",
			ChatModel:       "gpt-4o-mini",
			OpenAIKey:       "sk-openai",
		})

		sel, err := r.Select(TierChat, UserConfig{Provider: "groq", APIKey: "gsk-user"})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, sel.Provider)
		assert.Equal(t, "sk-openai", sel.APIKey)
	})
}

func TestRouterSelect_OpenRouterOptions(t *testing.T) {
	t.Run("configured order is applied and capped", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider:            "openrouter",
			OpenRouterKey:              "or-key",
			DefaultOpenRouterProviders: "Google Vertex, Google AI Studio, Anthropic, OpenAI",
		})

		sel, err := r.Select(TierDefault, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenRouter, sel.Provider)
		assert.Equal(t, ModelOpenRouterSonnet4, sel.Model)
		require.Len(t, sel.OpenRouterOrder, 3)
		assert.Equal(t, []string{"Google Vertex", "Google AI Studio", "Anthropic"}, sel.OpenRouterOrder)
	})

	t.Run("non-openrouter selections carry no order", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider:            "anthropic",
			AnthropicKey:               "sk-proc",
			DefaultOpenRouterProviders: "Anthropic",
		})

		sel, err := r.Select(TierDefault, UserConfig{})
		require.NoError(t, err)
		assert.Empty(t, sel.OpenRouterOrder)
	})
}

func TestRouterSelect_Auto(t *testing.T) {
	t.Run("no credentials at all", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{DefaultProvider: "auto"})
		_, err := r.Select(TierDefault, UserConfig{})
		require.ErrorIs(t, err, ErrProviderNotConfigured)
	})

	t.Run("single eligible provider is always picked", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "auto",
			AnthropicKey:    "sk-proc",
		})

		for range 20 {
			sel, err := r.Select(TierDefault, UserConfig{})
			require.NoError(t, err)
			assert.Equal(t, ProviderAnthropic, sel.Provider)
			assert.Equal(t, ModelClaudeSonnet4, sel.Model)
		}
	})

	t.Run("openrouter pick carries routing order and a known model", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "auto",
			OpenRouterKey:   "or-key",
		})

		sel, err := r.Select(TierDefault, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenRouter, sel.Provider)
		assert.Contains(t, openRouterAutoModels, sel.Model)
		require.NotEmpty(t, sel.OpenRouterOrder)
		assert.LessOrEqual(t, len(sel.OpenRouterOrder), 3)
	})

	t.Run("spreads load across eligible providers", func(t *testing.T) {
		cfg := config.RouterConfig{
			DefaultProvider: "auto",
			AnthropicKey:    "sk-proc",
			OpenRouterKey:   "or-key",
		}

		// Deterministic round-robin source: both candidates must show up.
		draw := 0
		r := NewRouter(cfg, WithRandSource(func(n int) int {
			draw++
			return draw % n
		}))

		counts := map[Provider]int{}
		for range 1000 {
			sel, err := r.Select(TierDefault, UserConfig{})
			require.NoError(t, err)
			counts[sel.Provider]++
		}
		assert.Positive(t, counts[ProviderAnthropic])
		assert.Positive(t, counts[ProviderOpenRouter])
	})

	t.Run("auto override without credentials falls back to default tier", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "openai",
			OpenAIKey:       "sk-openai",
			EconomyProvider: "auto",
			EconomyModel:    "ignored",
			// no anthropic or openrouter keys, so auto has no candidates
		})

		sel, err := r.Select(TierEconomy, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, sel.Provider)
		assert.Equal(t, "sk-openai", sel.APIKey)
	})

	t.Run("auto as tier override", func(t *testing.T) {
		r := NewRouter(config.RouterConfig{
			DefaultProvider: "openai",
			OpenAIKey:       "sk-openai",
			EconomyProvider: "auto",
			EconomyModel:    "ignored",
			AnthropicKey:    "sk-proc",
		}, WithRandSource(func(n int) int { return 0 }))

		sel, err := r.Select(TierEconomy, UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, sel.Provider)
	})
}
