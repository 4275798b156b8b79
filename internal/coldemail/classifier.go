package coldemail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/coldguard/internal/instrumentation"
	"github.com/teemow/coldguard/internal/llm"
	"github.com/teemow/coldguard/internal/logging"
)

// classificationSchema is the JSON object the model must return.
var classificationSchema = &llm.Schema{
	Fields: []llm.SchemaField{
		{Name: "coldEmail", Type: "boolean", Description: "true when the email is a cold email"},
		{Name: "reason", Type: "string", Description: "concise explanation of why"},
	},
}

// Classifier decides whether an email is cold and applies the account's
// blocker policy to cold emails.
type Classifier struct {
	store   Store
	mail    MailProvider
	router  *llm.Router
	invoker llm.Invoker
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithLogger sets the classifier's logger.
func WithLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = logger }
}

// WithMetrics attaches a metrics recorder. Nil-safe; without it no metrics
// are recorded.
func WithMetrics(m *instrumentation.Metrics) ClassifierOption {
	return func(c *Classifier) { c.metrics = m }
}

// NewClassifier creates a Classifier.
func NewClassifier(store Store, mail MailProvider, router *llm.Router, invoker llm.Invoker, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		store:   store,
		mail:    mail,
		router:  router,
		invoker: invoker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs the classification pipeline without persisting a verdict or
// touching the mailbox. The tiers are checked cheapest first: known cold
// sender, then prior communication, then the model.
func (c *Classifier) Classify(ctx context.Context, account Account, email Email) (Result, error) {
	start := time.Now()
	res, err := c.classify(ctx, account, email)
	c.recordClassification(ctx, res, err, time.Since(start))
	return res, err
}

// Run classifies the email and, when the verdict is cold, persists it and
// applies the account's blocker policy.
func (c *Classifier) Run(ctx context.Context, account Account, email Email) (Result, error) {
	start := time.Now()
	res, err := c.classify(ctx, account, email)
	c.recordClassification(ctx, res, err, time.Since(start))
	if err != nil {
		return Result{}, err
	}
	if !res.IsColdEmail {
		return res, nil
	}

	rec, err := c.persist(ctx, account, email, res)
	if err != nil {
		return Result{}, err
	}
	res.ColdEmailID = rec.ID

	if account.Blocker.Enabled() {
		if err := c.applyBlocker(ctx, account, email); err != nil {
			return Result{}, err
		}
	}

	c.logger.Info("cold email blocked",
		logging.Account(account.ID),
		logging.Sender(email.From),
		logging.Reason(string(res.Reason)),
		logging.ThreadID(email.ThreadID))
	return res, nil
}

func (c *Classifier) classify(ctx context.Context, account Account, email Email) (Result, error) {
	// Tier 1: sender already marked cold by a previous model verdict.
	// A user-cleared sender never matches.
	known, err := c.store.FindColdSender(ctx, account.ID, email.From)
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up sender: %w", err)
	}
	if known != nil {
		return Result{IsColdEmail: true, Reason: ReasonAIAlreadyLabeled}, nil
	}

	// Tier 2: prior communication means not cold. Needs both a date and
	// a message id so the email itself can be excluded from the search.
	if email.Date != nil && email.MessageID != "" {
		hasPrevious, err := c.mail.HasPreviousCommunicationsWithSenderOrDomain(ctx, email.From, *email.Date, email.MessageID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check previous communications: %w", err)
		}
		if hasPrevious {
			return Result{IsColdEmail: false, Reason: ReasonHasPreviousEmail}, nil
		}
	}

	// Tier 3: ask the model.
	return c.classifyWithModel(ctx, account, email)
}

func (c *Classifier) classifyWithModel(ctx context.Context, account Account, email Email) (Result, error) {
	sel, err := c.router.Select(llm.TierDefault, account.AI)
	if err != nil {
		return Result{}, fmt.Errorf("failed to select model: %w", err)
	}

	start := time.Now()
	raw, err := c.invoker.Invoke(ctx, sel, llm.Request{
		System: buildSystemPrompt(account),
		Prompt: buildUserPrompt(email),
		Schema: classificationSchema,
	})
	if c.metrics != nil {
		c.metrics.RecordLLMRequest(ctx, string(sel.Provider), sel.Model, err == nil, time.Since(start))
	}
	if err != nil {
		return Result{}, fmt.Errorf("model classification failed: %w", err)
	}

	var verdict struct {
		ColdEmail bool   `json:"coldEmail"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return Result{}, fmt.Errorf("failed to decode model verdict: %w", err)
	}

	c.logger.Debug("model verdict",
		logging.Account(account.ID),
		logging.Sender(email.From),
		logging.Provider(string(sel.Provider)),
		logging.Model(sel.Model),
		slog.Bool("cold", verdict.ColdEmail))
	return Result{IsColdEmail: verdict.ColdEmail, Reason: ReasonAI, AIReason: verdict.Reason}, nil
}

// persist writes the cold verdict for the sender. Repeated verdicts update
// the existing row in place.
func (c *Classifier) persist(ctx context.Context, account Account, email Email, res Result) (Record, error) {
	rec := Record{
		AccountID: account.ID,
		FromEmail: email.From,
		Status:    StatusAILabeledCold,
	}
	if res.AIReason != "" {
		rec.Reason = &res.AIReason
	}
	if email.MessageID != "" {
		rec.MessageID = &email.MessageID
	}
	if email.ThreadID != "" {
		rec.ThreadID = &email.ThreadID
	}

	stored, err := c.store.UpsertColdEmail(ctx, rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to persist cold email: %w", err)
	}
	return stored, nil
}

// applyBlocker runs the mailbox actions the account's policy asks for:
// label always, archive and mark-read depending on the policy.
func (c *Classifier) applyBlocker(ctx context.Context, account Account, email Email) error {
	label, err := c.mail.GetOrCreateColdEmailLabel(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve cold email label: %w", err)
	}
	if label != nil && label.ID != "" && email.MessageID != "" {
		if err := c.mail.LabelMessage(ctx, email.MessageID, label.ID); err != nil {
			return fmt.Errorf("failed to label message: %w", err)
		}
		c.recordMailAction(ctx, "label", nil)
	}

	if account.Blocker.Archives() {
		if account.Email == "" {
			return fmt.Errorf("account email is required to archive")
		}
		if err := c.mail.ArchiveThread(ctx, email.ThreadID, account.Email); err != nil {
			c.recordMailAction(ctx, "archive", err)
			return fmt.Errorf("failed to archive thread: %w", err)
		}
		c.recordMailAction(ctx, "archive", nil)
	}

	if account.Blocker.MarksRead() {
		if err := c.mail.MarkReadThread(ctx, email.ThreadID, true); err != nil {
			c.recordMailAction(ctx, "mark_read", err)
			return fmt.Errorf("failed to mark thread read: %w", err)
		}
		c.recordMailAction(ctx, "mark_read", nil)
	}
	return nil
}

func (c *Classifier) recordClassification(ctx context.Context, res Result, err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	reason := string(res.Reason)
	if err != nil {
		reason = "error"
	}
	c.metrics.RecordClassification(ctx, reason, res.IsColdEmail, err == nil, d)
}

func (c *Classifier) recordMailAction(ctx context.Context, action string, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordMailAction(ctx, action, err == nil)
}
