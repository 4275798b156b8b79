package coldemail

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/coldguard/internal/llm"
)

// Status records how a sender came to be marked cold, or cleared.
type Status string

const (
	StatusUnreviewed         Status = "UNREVIEWED"
	StatusAILabeledCold      Status = "AI_LABELED_COLD"
	StatusUserLabeledNotCold Status = "USER_LABELED_NOT_COLD"
)

// BlockerPolicy controls which mailbox actions run after a cold verdict.
type BlockerPolicy string

const (
	PolicyDisabled            BlockerPolicy = "DISABLED"
	PolicyLabel               BlockerPolicy = "LABEL"
	PolicyArchiveAndLabel     BlockerPolicy = "ARCHIVE_AND_LABEL"
	PolicyArchiveAndReadLabel BlockerPolicy = "ARCHIVE_AND_READ_AND_LABEL"
)

// Enabled reports whether the policy runs any action at all.
func (p BlockerPolicy) Enabled() bool {
	return p == PolicyLabel || p == PolicyArchiveAndLabel || p == PolicyArchiveAndReadLabel
}

// Archives reports whether the policy removes the thread from the inbox.
func (p BlockerPolicy) Archives() bool {
	return p == PolicyArchiveAndLabel || p == PolicyArchiveAndReadLabel
}

// MarksRead reports whether the policy marks the thread as read.
func (p BlockerPolicy) MarksRead() bool {
	return p == PolicyArchiveAndReadLabel
}

// ParseBlockerPolicy validates a blocker policy name.
func ParseBlockerPolicy(s string) (BlockerPolicy, error) {
	switch p := BlockerPolicy(s); p {
	case PolicyDisabled, PolicyLabel, PolicyArchiveAndLabel, PolicyArchiveAndReadLabel:
		return p, nil
	default:
		return "", fmt.Errorf("unknown blocker policy %q (valid: %s, %s, %s, %s)",
			s, PolicyDisabled, PolicyLabel, PolicyArchiveAndLabel, PolicyArchiveAndReadLabel)
	}
}

// Reason explains a cold verdict.
type Reason string

const (
	// ReasonHasPreviousEmail means prior communication exists, so the
	// email is not cold.
	ReasonHasPreviousEmail Reason = "hasPreviousEmail"

	// ReasonAI means the model classified the email.
	ReasonAI Reason = "ai"

	// ReasonAIAlreadyLabeled means the sender was already recorded as
	// cold by an earlier model classification.
	ReasonAIAlreadyLabeled Reason = "ai-already-labeled"
)

// Email is the inbound message under classification.
type Email struct {
	From      string
	Subject   string
	Body      string
	MessageID string
	ThreadID  string

	// Date is the internal received time. Nil disables the
	// prior-communication check.
	Date *time.Time
}

// Account is the mailbox account an email belongs to, together with its
// cold-email settings.
type Account struct {
	ID    string
	Email string

	// Blocker selects the actions applied to cold emails.
	Blocker BlockerPolicy

	// Prompt overrides the built-in classification instructions.
	// Empty means the default prompt.
	Prompt string

	// AI carries the account's own model preferences, if any.
	AI llm.UserConfig
}

// Record is a persisted cold-email verdict for one sender of one account.
type Record struct {
	ID        string    `db:"id"`
	AccountID string    `db:"account_id"`
	FromEmail string    `db:"from_email"`
	Status    Status    `db:"status"`
	Reason    *string   `db:"reason"`
	MessageID *string   `db:"message_id"`
	ThreadID  *string   `db:"thread_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Result is the outcome of classifying one email.
type Result struct {
	IsColdEmail bool   `json:"isColdEmail"`
	Reason      Reason `json:"reason"`

	// AIReason is the model's own explanation, set only when the model
	// was consulted.
	AIReason string `json:"aiReason,omitempty"`

	// ColdEmailID is the persisted record's identifier, set when the
	// verdict was written to storage.
	ColdEmailID string `json:"coldEmailId,omitempty"`
}

// Store persists cold-email verdicts.
type Store interface {
	// FindColdSender returns the record for a sender previously marked
	// cold by the model, or nil when the sender is unknown or was
	// cleared by the user.
	FindColdSender(ctx context.Context, accountID, fromEmail string) (*Record, error)

	// UpsertColdEmail inserts or updates the verdict for
	// (account, sender) and returns the stored record.
	UpsertColdEmail(ctx context.Context, rec Record) (Record, error)
}

// Label is a mailbox label.
type Label struct {
	ID   string
	Name string
}

// MailProvider is the mailbox capability surface the classifier needs.
type MailProvider interface {
	// HasPreviousCommunicationsWithSenderOrDomain reports whether any
	// message from the sender (or, for company domains, the sender's
	// domain) arrived before the given date, excluding the message
	// itself.
	HasPreviousCommunicationsWithSenderOrDomain(ctx context.Context, from string, before time.Time, excludeMessageID string) (bool, error)

	// GetOrCreateColdEmailLabel returns the cold-email label, creating
	// it if needed.
	GetOrCreateColdEmailLabel(ctx context.Context) (*Label, error)

	// LabelMessage adds a label to a message.
	LabelMessage(ctx context.Context, messageID, labelID string) error

	// ArchiveThread removes a thread from the inbox.
	ArchiveThread(ctx context.Context, threadID, accountEmail string) error

	// MarkReadThread marks a thread read or unread.
	MarkReadThread(ctx context.Context, threadID string, read bool) error
}
