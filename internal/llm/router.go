package llm

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/teemow/coldguard/internal/config"
	"github.com/teemow/coldguard/internal/logging"
)

// maxOpenRouterOrder caps the number of upstream providers passed to
// OpenRouter for routing.
const maxOpenRouterOrder = 3

// openRouterAutoModels are the models the auto sentinel picks from when it
// lands on OpenRouter.
var openRouterAutoModels = []string{ModelOpenRouterGemini25, ModelOpenRouterSonnet4}

// openRouterAutoOrder is the upstream routing order used for auto
// selections on OpenRouter.
var openRouterAutoOrder = []string{"Google Vertex", "Google AI Studio", "Anthropic"}

// autoProviders are the providers the auto sentinel spreads load across.
// Only providers with configured credentials are eligible.
var autoProviders = []Provider{ProviderAnthropic, ProviderOpenRouter}

// Selection is a fully resolved routing decision: which provider and model
// to call, where, and with which credentials.
type Selection struct {
	Tier     Tier
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string

	// OpenRouterOrder restricts which upstream providers OpenRouter may
	// route the request to, in preference order. Empty for all other
	// providers.
	OpenRouterOrder []string
}

// UserConfig carries an account's own model preferences. All fields are
// optional; Provider and Model take effect only when APIKey is also set,
// otherwise the account routes through the process-level default.
type UserConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// Router maps a tier plus per-account preferences to a Selection.
type Router struct {
	cfg    config.RouterConfig
	logger *slog.Logger
	intn   func(n int) int
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for routing decisions.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithRandSource replaces the random source used by the auto sentinel.
// Intended for deterministic tests.
func WithRandSource(intn func(n int) int) RouterOption {
	return func(r *Router) { r.intn = intn }
}

// NewRouter creates a Router for the given configuration.
func NewRouter(cfg config.RouterConfig, opts ...RouterOption) *Router {
	r := &Router{
		cfg:    cfg,
		logger: slog.Default(),
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Select resolves a tier and account preferences to a concrete Selection.
//
// The economy and chat tiers are honored only when fully configured with
// available credentials; otherwise selection falls back to the default tier
// with a warning rather than failing the request. Within the default tier an
// account's provider and model preferences apply only when the account also
// supplies its own API key.
func (r *Router) Select(tier Tier, user UserConfig) (Selection, error) {
	switch tier {
	case TierEconomy:
		if sel, ok, err := r.selectTierOverride(tier, r.cfg.EconomyProvider, r.cfg.EconomyModel, r.cfg.EconomyOpenRouterProviders); err != nil {
			return Selection{}, err
		} else if ok {
			return sel, nil
		}
	case TierChat:
		if sel, ok, err := r.selectTierOverride(tier, r.cfg.ChatProvider, r.cfg.ChatModel, r.cfg.ChatOpenRouterProviders); err != nil {
			return Selection{}, err
		} else if ok {
			return sel, nil
		}
	}
	return r.selectDefault(tier, user)
}

// selectTierOverride resolves an economy/chat tier override. The second
// return value reports whether the override applied; a missing API key
// downgrades to the default tier instead of failing.
func (r *Router) selectTierOverride(tier Tier, provider, model, orderList string) (Selection, bool, error) {
	if provider == "" || model == "" {
		return Selection{}, false, nil
	}
	p, err := ParseProvider(provider)
	if err != nil {
		return Selection{}, false, err
	}
	if p == ProviderAuto {
		sel, err := r.selectAuto(tier)
		if errors.Is(err, ErrProviderNotConfigured) {
			r.logger.Warn("no credentials for auto selection, falling back to default tier",
				logging.Tier(string(tier)))
			return Selection{}, false, nil
		}
		if err != nil {
			return Selection{}, false, err
		}
		return sel, true, nil
	}
	if !hasCredentials(r.cfg, p) {
		r.logger.Warn("tier provider has no credentials, falling back to default tier",
			logging.Tier(string(tier)),
			logging.Provider(string(p)))
		return Selection{}, false, nil
	}
	sel, err := r.resolve(tier, p, model, providerKey(r.cfg, p), config.OpenRouterOrder(orderList))
	if err != nil {
		return Selection{}, false, err
	}
	return sel, true, nil
}

// selectDefault resolves the default tier. An account's own provider and
// model choice apply only when the account also carries its own API key;
// without a key the account routes through the process-level default.
func (r *Router) selectDefault(tier Tier, user UserConfig) (Selection, error) {
	provider := r.cfg.DefaultProvider
	model := r.cfg.DefaultModel
	key := ""
	if user.APIKey != "" {
		if user.Provider != "" {
			provider = user.Provider
		}
		// The account's key pays for the call, so an unset model falls to
		// the chosen provider's built-in default, not the process default.
		model = user.Model
		key = user.APIKey
	}

	p, err := ParseProvider(provider)
	if err != nil {
		return Selection{}, err
	}
	if p == ProviderAuto {
		return r.selectAuto(tier)
	}
	if key == "" {
		key = providerKey(r.cfg, p)
	}
	return r.resolve(tier, p, model, key, config.OpenRouterOrder(r.cfg.DefaultOpenRouterProviders))
}

// selectAuto picks a random provider/model pair from the eligible auto
// candidates.
func (r *Router) selectAuto(tier Tier) (Selection, error) {
	eligible := make([]Provider, 0, len(autoProviders))
	for _, p := range autoProviders {
		if hasCredentials(r.cfg, p) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return Selection{}, fmt.Errorf("%w: no provider with credentials for auto selection", ErrProviderNotConfigured)
	}

	p := eligible[r.intn(len(eligible))]
	model := defaultModel(p)
	var order []string
	if p == ProviderOpenRouter {
		model = openRouterAutoModels[r.intn(len(openRouterAutoModels))]
		order = openRouterAutoOrder
	}
	return r.resolve(tier, p, model, providerKey(r.cfg, p), order)
}

// resolve fills in base URL, default model, and validates credentials.
func (r *Router) resolve(tier Tier, p Provider, model, key string, order []string) (Selection, error) {
	sel := Selection{Tier: tier, Provider: p, Model: model, APIKey: key}

	switch p {
	case ProviderOpenAI:
		sel.BaseURL = baseURLOpenAI
	case ProviderAnthropic:
		sel.BaseURL = baseURLAnthropic
	case ProviderGoogle:
		sel.BaseURL = baseURLGoogle
	case ProviderGroq:
		sel.BaseURL = baseURLGroq
	case ProviderOpenRouter:
		sel.BaseURL = baseURLOpenRouter
		if len(order) > maxOpenRouterOrder {
			order = order[:maxOpenRouterOrder]
		}
		sel.OpenRouterOrder = order
	case ProviderOllama:
		sel.BaseURL = r.cfg.OllamaBaseURL
		if sel.Model == "" {
			sel.Model = r.cfg.OllamaModel
		}
		if sel.Model == "" {
			return Selection{}, fmt.Errorf("%w: ollama requires a model", ErrProviderNotConfigured)
		}
	default:
		return Selection{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}

	if sel.Model == "" {
		sel.Model = defaultModel(p)
	}
	if p != ProviderOllama && sel.APIKey == "" {
		return Selection{}, fmt.Errorf("%w: no API key for %s", ErrProviderNotConfigured, p)
	}

	r.logger.Debug("selected model",
		logging.Tier(string(sel.Tier)),
		logging.Provider(string(sel.Provider)),
		logging.Model(sel.Model))
	return sel, nil
}
