// Package llm routes classification requests to language-model providers
// and executes them over HTTP.
//
// Routing is tiered (default, economy, chat). Tiers and per-provider API
// keys come from the environment; accounts may override the default tier
// with their own provider, model, and key. The special provider "auto"
// spreads load randomly across providers that have credentials.
//
// The HTTP invoker speaks two dialects: the Anthropic messages API and the
// OpenAI chat-completions API, which also covers Google, Groq, OpenRouter,
// and Ollama. Responses are validated against a caller-supplied JSON
// schema before being returned.
package llm
