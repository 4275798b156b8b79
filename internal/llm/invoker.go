package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/coldguard/internal/logging"
)

const (
	anthropicVersion = "2023-06-01"

	defaultMaxTokens      = 1024
	defaultRequestTimeout = 60 * time.Second

	// responseBodyLimit bounds how much of a provider response we read.
	responseBodyLimit = 1 << 20
)

// SchemaField describes one required field of the expected JSON output.
// Type is a JSON type name: "string", "boolean", or "number".
type SchemaField struct {
	Name        string
	Type        string
	Description string
}

// Schema describes the JSON object a model must return. All fields are
// required; responses missing a field or using a wrong type are rejected
// with ErrInvalidResponse.
type Schema struct {
	Fields []SchemaField
}

// Request is a single structured-output completion request.
type Request struct {
	// System is the system prompt. Schema instructions are appended to it.
	System string

	// Prompt is the user message.
	Prompt string

	// Schema describes the required JSON output. Optional; without a
	// schema the raw text content is returned as a JSON string.
	Schema *Schema

	// MaxTokens caps the completion length (default 1024).
	MaxTokens int

	// Temperature is passed through to the provider. Zero means the
	// provider default.
	Temperature float64
}

// Invoker executes a completion request against a resolved Selection.
type Invoker interface {
	Invoke(ctx context.Context, sel Selection, req Request) (json.RawMessage, error)
}

// HTTPInvoker talks to providers over their HTTP APIs. Anthropic uses its
// native messages API; every other provider speaks the OpenAI
// chat-completions dialect.
type HTTPInvoker struct {
	client *http.Client
	logger *slog.Logger
}

// InvokerOption configures an HTTPInvoker.
type InvokerOption func(*HTTPInvoker)

// WithHTTPClient sets the HTTP client used for provider requests.
func WithHTTPClient(client *http.Client) InvokerOption {
	return func(i *HTTPInvoker) { i.client = client }
}

// WithInvokerLogger sets the logger used for request logging.
func WithInvokerLogger(logger *slog.Logger) InvokerOption {
	return func(i *HTTPInvoker) { i.logger = logger }
}

// NewHTTPInvoker creates an HTTPInvoker with a default timeout.
func NewHTTPInvoker(opts ...InvokerOption) *HTTPInvoker {
	inv := &HTTPInvoker{
		client: &http.Client{Timeout: defaultRequestTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke sends the request to the selected provider and returns the JSON
// object the model produced, validated against the request schema.
func (i *HTTPInvoker) Invoke(ctx context.Context, sel Selection, req Request) (json.RawMessage, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	start := time.Now()
	var (
		content string
		err     error
	)
	if sel.Provider == ProviderAnthropic {
		content, err = i.invokeAnthropic(ctx, sel, req)
	} else {
		content, err = i.invokeOpenAIStyle(ctx, sel, req)
	}
	if err != nil {
		return nil, err
	}

	i.logger.Debug("llm request completed",
		logging.Provider(string(sel.Provider)),
		logging.Model(sel.Model),
		logging.Duration(time.Since(start)))

	if req.Schema == nil {
		return json.Marshal(content)
	}
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(raw, req.Schema); err != nil {
		return nil, err
	}
	return raw, nil
}

// invokeAnthropic calls the Anthropic messages API.
func (i *HTTPInvoker) invokeAnthropic(ctx context.Context, sel Selection, req Request) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body := map[string]any{
		"model":      sel.Model,
		"max_tokens": req.MaxTokens,
		"messages":   []message{{Role: "user", Content: req.Prompt}},
	}
	if system := systemWithSchema(req); system != "" {
		body["system"] = system
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}

	headers := map[string]string{
		"x-api-key":         sel.APIKey,
		"anthropic-version": anthropicVersion,
	}
	respBody, err := i.post(ctx, sel.BaseURL+"/messages", headers, body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: anthropic response contains no text content", ErrInvalidResponse)
}

// invokeOpenAIStyle calls an OpenAI-compatible chat-completions endpoint.
func (i *HTTPInvoker) invokeOpenAIStyle(ctx context.Context, sel Selection, req Request) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	messages := []message{}
	if system := systemWithSchema(req); system != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})

	body := map[string]any{
		"model":      sel.Model,
		"messages":   messages,
		"max_tokens": req.MaxTokens,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if sel.Provider == ProviderOpenRouter && len(sel.OpenRouterOrder) > 0 {
		body["provider"] = map[string]any{"order": sel.OpenRouterOrder}
	}

	headers := map[string]string{}
	if sel.APIKey != "" {
		headers["Authorization"] = "Bearer " + sel.APIKey
	}
	respBody, err := i.post(ctx, sel.BaseURL+"/chat/completions", headers, body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion response contains no choices", ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// post sends a JSON request and returns the response body, treating any
// non-2xx status as an error.
func (i *HTTPInvoker) post(ctx context.Context, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("llm request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// systemWithSchema appends output-format instructions derived from the
// request schema to the system prompt.
func systemWithSchema(req Request) string {
	if req.Schema == nil || len(req.Schema.Fields) == 0 {
		return req.System
	}

	var sb strings.Builder
	sb.WriteString(req.System)
	if req.System != "" {
		sb.WriteString("\n\n")
	}
	sb.WriteString("Respond with a single JSON object and nothing else. The object must have exactly these fields:\n")
	for _, f := range req.Schema.Fields {
		fmt.Fprintf(&sb, "- %q (%s): %s\n", f.Name, f.Type, f.Description)
	}
	return sb.String()
}

// extractJSON pulls the first JSON object out of model output, tolerating
// surrounding prose and markdown code fences.
func extractJSON(content string) (json.RawMessage, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrInvalidResponse)
	}
	raw := json.RawMessage(content[start : end+1])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: malformed JSON object in output", ErrInvalidResponse)
	}
	return raw, nil
}

// validateAgainstSchema checks that every schema field is present with the
// declared JSON type.
func validateAgainstSchema(raw json.RawMessage, schema *Schema) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: output is not a JSON object", ErrInvalidResponse)
	}
	for _, f := range schema.Fields {
		v, ok := obj[f.Name]
		if !ok {
			return fmt.Errorf("%w: missing field %q", ErrInvalidResponse, f.Name)
		}
		switch f.Type {
		case "string":
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: field %q is not a string", ErrInvalidResponse, f.Name)
			}
		case "boolean":
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("%w: field %q is not a boolean", ErrInvalidResponse, f.Name)
			}
		case "number":
			if _, ok := v.(float64); !ok {
				return fmt.Errorf("%w: field %q is not a number", ErrInvalidResponse, f.Name)
			}
		}
	}
	return nil
}
