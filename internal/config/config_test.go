package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "anthropic", cfg.Router.DefaultProvider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Router.OllamaBaseURL)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEFAULT_LLM_PROVIDER", "openrouter")
	t.Setenv("DEFAULT_LLM_MODEL", "anthropic/claude-sonnet-4")
	t.Setenv("DEFAULT_OPENROUTER_PROVIDERS", "Google Vertex, Anthropic")
	t.Setenv("ECONOMY_LLM_PROVIDER", "groq")
	t.Setenv("ECONOMY_LLM_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("COLDGUARD_DB_PATH", "/tmp/coldguard-test.db")

	cfg := DefaultConfig()

	assert.Equal(t, "openrouter", cfg.Router.DefaultProvider)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.Router.DefaultModel)
	assert.Equal(t, "groq", cfg.Router.EconomyProvider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Router.EconomyModel)
	assert.Equal(t, "/tmp/coldguard-test.db", cfg.Storage.Path)
	require.NoError(t, cfg.Validate())
}

func TestRouterConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RouterConfig
		wantErr string
	}{
		{
			name: "valid minimal",
			cfg:  RouterConfig{DefaultProvider: "anthropic"},
		},
		{
			name:    "empty default provider",
			cfg:     RouterConfig{},
			wantErr: "default provider",
		},
		{
			name: "economy provider without model",
			cfg: RouterConfig{
				DefaultProvider: "openai",
				EconomyProvider: "groq",
			},
			wantErr: "ECONOMY_LLM_MODEL",
		},
		{
			name: "chat provider without model",
			cfg: RouterConfig{
				DefaultProvider: "openai",
				ChatProvider:    "google",
			},
			wantErr: "CHAT_LLM_MODEL",
		},
		{
			name: "complete tiers",
			cfg: RouterConfig{
				DefaultProvider: "auto",
				EconomyProvider: "google",
				EconomyModel:    "gemini-2.0-flash",
				ChatProvider:    "openai",
				ChatModel:       "gpt-4o",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenRouterOrder(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{name: "empty", list: "", want: nil},
		{name: "single", list: "Anthropic", want: []string{"Anthropic"}},
		{
			name: "trims whitespace",
			list: "Google Vertex, Google AI Studio ,Anthropic",
			want: []string{"Google Vertex", "Google AI Studio", "Anthropic"},
		},
		{name: "only separators", list: " , ,", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpenRouterOrder(tt.list))
		})
	}
}
