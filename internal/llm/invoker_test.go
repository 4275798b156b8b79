package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coldEmailSchema = &Schema{
	Fields: []SchemaField{
		{Name: "coldEmail", Type: "boolean", Description: "whether the email is cold"},
		{Name: "reason", Type: "string", Description: "short explanation"},
	},
}

func TestHTTPInvoker_OpenAIStyle(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": `{"coldEmail": true, "reason": "unsolicited pitch"}`,
				}},
			},
		})
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	sel := Selection{Provider: ProviderOpenAI, Model: "gpt-4o", BaseURL: srv.URL, APIKey: "sk-test"}
	raw, err := inv.Invoke(context.Background(), sel, Request{
		System: "You classify emails.",
		Prompt: "From: stranger@example.com",
		Schema: coldEmailSchema,
	})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody["model"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "You classify emails.")
	assert.Contains(t, system["content"], `"coldEmail"`)

	var out struct {
		ColdEmail bool   `json:"coldEmail"`
		Reason    string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.ColdEmail)
	assert.Equal(t, "unsolicited pitch", out.Reason)
}

func TestHTTPInvoker_Anthropic(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "```json\n{\"coldEmail\": false, \"reason\": \"prior thread\"}\n```"},
			},
		})
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	sel := Selection{Provider: ProviderAnthropic, Model: ModelClaudeSonnet4, BaseURL: srv.URL, APIKey: "sk-ant"}
	raw, err := inv.Invoke(context.Background(), sel, Request{
		System: "You classify emails.",
		Prompt: "From: colleague@example.com",
		Schema: coldEmailSchema,
	})
	require.NoError(t, err)

	assert.Equal(t, "/messages", gotPath)
	assert.Equal(t, "sk-ant", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, ModelClaudeSonnet4, gotBody["model"])
	assert.Contains(t, gotBody["system"], "You classify emails.")

	var out struct {
		ColdEmail bool   `json:"coldEmail"`
		Reason    string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.False(t, out.ColdEmail)
	assert.Equal(t, "prior thread", out.Reason)
}

func TestHTTPInvoker_OpenRouterOrder(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"coldEmail": true, "reason": "ad"}`}},
			},
		})
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	sel := Selection{
		Provider:        ProviderOpenRouter,
		Model:           ModelOpenRouterSonnet4,
		BaseURL:         srv.URL,
		APIKey:          "or-key",
		OpenRouterOrder: []string{"Google Vertex", "Anthropic"},
	}
	_, err := inv.Invoke(context.Background(), sel, Request{Prompt: "hi", Schema: coldEmailSchema})
	require.NoError(t, err)

	provider, ok := gotBody["provider"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Google Vertex", "Anthropic"}, provider["order"])
}

func TestHTTPInvoker_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	sel := Selection{Provider: ProviderOpenAI, Model: "gpt-4o", BaseURL: srv.URL, APIKey: "sk-test"}
	_, err := inv.Invoke(context.Background(), sel, Request{Prompt: "hi", Schema: coldEmailSchema})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPInvoker_SchemaValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid", content: `{"coldEmail": true, "reason": "ad"}`},
		{name: "prose around object", content: `Sure! {"coldEmail": false, "reason": "known"} Hope that helps.`},
		{name: "missing field", content: `{"coldEmail": true}`, wantErr: true},
		{name: "wrong type", content: `{"coldEmail": "yes", "reason": "ad"}`, wantErr: true},
		{name: "no json at all", content: `the email is cold`, wantErr: true},
		{name: "malformed json", content: `{"coldEmail": tru`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"content": tt.content}},
					},
				})
			}))
			defer srv.Close()

			inv := NewHTTPInvoker()
			sel := Selection{Provider: ProviderGroq, Model: ModelLlama33_70B, BaseURL: srv.URL, APIKey: "gsk"}
			_, err := inv.Invoke(context.Background(), sel, Request{Prompt: "hi", Schema: coldEmailSchema})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidResponse)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
