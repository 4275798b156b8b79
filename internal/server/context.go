package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/coldguard/internal/coldemail"
	"github.com/teemow/coldguard/internal/config"
	"github.com/teemow/coldguard/internal/gmail"
	"github.com/teemow/coldguard/internal/google"
	"github.com/teemow/coldguard/internal/instrumentation"
	"github.com/teemow/coldguard/internal/llm"
	"github.com/teemow/coldguard/internal/store"
)

// ServerContext holds the shared dependencies for the MCP server
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cfg          config.Config
	store        *store.SQLiteStore
	router       *llm.Router
	invoker      llm.Invoker
	gmailClients map[string]*gmail.Client // Maps account name to Gmail client
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context. It opens the verdict
// database and wires the model router and invoker from the configuration.
func NewServerContext(ctx context.Context, cfg config.Config) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Storage.Path, err)
	}

	// Initialize client map
	gmailClients := make(map[string]*gmail.Client)

	// Try to create default Gmail client, but don't fail if token is missing
	// Clients will be lazily initialized when first needed
	if gmail.HasToken() {
		gmailClient, err := gmail.NewClient(shutdownCtx)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			slog.Warn("failed to create Gmail client for default account", "error", err)
		} else {
			gmailClients["default"] = gmailClient
		}
	}

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		cfg:          cfg,
		store:        st,
		router:       llm.NewRouter(cfg.Router),
		invoker:      llm.NewHTTPInvoker(),
		gmailClients: gmailClients,
		shutdown:     false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the server was started with.
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Store returns the verdict and account store.
func (sc *ServerContext) Store() *store.SQLiteStore {
	return sc.store
}

// Router returns the model router.
func (sc *ServerContext) Router() *llm.Router {
	return sc.router
}

// Invoker returns the model invoker.
func (sc *ServerContext) Invoker() llm.Invoker {
	return sc.invoker
}

// GmailClientForAccount returns the Gmail client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !gmail.HasTokenForAccount(account) {
		return nil
	}

	client, err := gmail.NewClientForAccount(sc.ctx, account)
	if err != nil {
		slog.Warn("failed to create Gmail client", "account", account, "error", err)
		return nil
	}

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount("default")
}

// SetGmailClientForAccount sets the Gmail client for a specific account
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// SetGmailClient sets the Gmail client for the default account
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.SetGmailClientForAccount("default", client)
}

// AccountForName resolves an account name to its stored settings. The
// mailbox profile supplies the email address that keys the account row,
// creating the row with default settings on first use.
func (sc *ServerContext) AccountForName(ctx context.Context, account string) (coldemail.Account, error) {
	client := sc.GmailClientForAccount(account)
	if client == nil {
		return coldemail.Account{}, fmt.Errorf("no Gmail client for account %s: %s",
			account, google.GetAuthenticationErrorMessage(account))
	}

	email, err := client.Profile(ctx)
	if err != nil {
		return coldemail.Account{}, fmt.Errorf("failed to resolve profile for account %s: %w", account, err)
	}

	return sc.store.GetOrCreateAccount(ctx, email)
}

// ClassifierForAccount returns a classifier bound to the given account's
// mailbox, or an error if the account has no Gmail token.
func (sc *ServerContext) ClassifierForAccount(account string) (*coldemail.Classifier, error) {
	client := sc.GmailClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("no Gmail client for account %s: %s",
			account, google.GetAuthenticationErrorMessage(account))
	}

	var opts []coldemail.ClassifierOption
	if m := sc.Metrics(); m != nil {
		opts = append(opts, coldemail.WithMetrics(m))
	}

	return coldemail.NewClassifier(sc.store, client, sc.router, sc.invoker, opts...), nil
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}

	return nil
}
