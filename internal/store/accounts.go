package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/coldguard/internal/coldemail"
	"github.com/teemow/coldguard/internal/llm"
)

// accountRow is the database representation of an account.
type accountRow struct {
	ID         string    `db:"id"`
	Email      string    `db:"email"`
	Blocker    string    `db:"cold_email_blocker"`
	Prompt     string    `db:"cold_email_prompt"`
	AIProvider string    `db:"ai_provider"`
	AIModel    string    `db:"ai_model"`
	AIAPIKey   string    `db:"ai_api_key"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r accountRow) toAccount() coldemail.Account {
	return coldemail.Account{
		ID:      r.ID,
		Email:   r.Email,
		Blocker: coldemail.BlockerPolicy(r.Blocker),
		Prompt:  r.Prompt,
		AI: llm.UserConfig{
			Provider: r.AIProvider,
			Model:    r.AIModel,
			APIKey:   r.AIAPIKey,
		},
	}
}

// GetAccount returns the account with the given email, or nil when no such
// account exists.
func (s *SQLiteStore) GetAccount(ctx context.Context, email string) (*coldemail.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM accounts WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %s: %w", email, err)
	}
	account := row.toAccount()
	return &account, nil
}

// GetOrCreateAccount returns the account with the given email, creating it
// with default settings on first use. New accounts label cold emails but do
// not archive them.
func (s *SQLiteStore) GetOrCreateAccount(ctx context.Context, email string) (coldemail.Account, error) {
	account, err := s.GetAccount(ctx, email)
	if err != nil {
		return coldemail.Account{}, err
	}
	if account != nil {
		return *account, nil
	}

	now := time.Now().UTC()
	row := accountRow{
		ID:        uuid.New().String(),
		Email:     email,
		Blocker:   string(coldemail.PolicyLabel),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, cold_email_blocker, cold_email_prompt,
			ai_provider, ai_model, ai_api_key, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`,
		row.ID, row.Email, row.Blocker, row.Prompt,
		row.AIProvider, row.AIModel, row.AIAPIKey,
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return coldemail.Account{}, fmt.Errorf("creating account %s: %w", email, err)
	}

	// Re-read so concurrent creation returns the winning row.
	account, err = s.GetAccount(ctx, email)
	if err != nil {
		return coldemail.Account{}, err
	}
	if account == nil {
		return coldemail.Account{}, fmt.Errorf("account %s vanished after creation", email)
	}
	return *account, nil
}

// UpdateAccountSettings persists the account's blocker policy, prompt, and
// model preferences.
func (s *SQLiteStore) UpdateAccountSettings(ctx context.Context, account coldemail.Account) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			cold_email_blocker = ?,
			cold_email_prompt  = ?,
			ai_provider        = ?,
			ai_model           = ?,
			ai_api_key         = ?,
			updated_at         = ?
		WHERE email = ?`,
		string(account.Blocker), account.Prompt,
		account.AI.Provider, account.AI.Model, account.AI.APIKey,
		time.Now().UTC(), account.Email,
	)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", account.Email, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating account %s: %w", account.Email, err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s does not exist", account.Email)
	}
	return nil
}
