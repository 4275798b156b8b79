package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/coldguard/internal/coldemail"
)

// FindColdSender returns the verdict for a sender the model marked cold,
// or nil when the sender is unknown or was cleared by the user.
func (s *SQLiteStore) FindColdSender(ctx context.Context, accountID, fromEmail string) (*coldemail.Record, error) {
	var rec coldemail.Record
	err := s.db.GetContext(ctx, &rec, `
		SELECT * FROM cold_emails
		WHERE account_id = ? AND from_email = ? AND status = ?`,
		accountID, fromEmail, coldemail.StatusAILabeledCold,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cold sender: %w", err)
	}
	return &rec, nil
}

// GetColdEmail returns the verdict row for a sender regardless of status,
// or nil when none exists.
func (s *SQLiteStore) GetColdEmail(ctx context.Context, accountID, fromEmail string) (*coldemail.Record, error) {
	var rec coldemail.Record
	err := s.db.GetContext(ctx, &rec, `
		SELECT * FROM cold_emails
		WHERE account_id = ? AND from_email = ?`,
		accountID, fromEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cold email: %w", err)
	}
	return &rec, nil
}

// UpsertColdEmail inserts or updates the verdict for (account, sender) and
// returns the stored row. Repeated verdicts keep the row's identity but
// refresh status, message pointers, and reason; a nil reason leaves any
// previously stored reason in place.
func (s *SQLiteStore) UpsertColdEmail(ctx context.Context, rec coldemail.Record) (coldemail.Record, error) {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cold_emails (
			id, account_id, from_email, status, reason, message_id, thread_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, from_email) DO UPDATE SET
			status     = excluded.status,
			reason     = COALESCE(excluded.reason, cold_emails.reason),
			message_id = COALESCE(excluded.message_id, cold_emails.message_id),
			thread_id  = COALESCE(excluded.thread_id, cold_emails.thread_id),
			updated_at = excluded.updated_at`,
		rec.ID, rec.AccountID, rec.FromEmail, rec.Status,
		rec.Reason, rec.MessageID, rec.ThreadID,
		now, now,
	)
	if err != nil {
		return coldemail.Record{}, fmt.Errorf("upserting cold email for %s: %w", rec.FromEmail, err)
	}

	stored, err := s.GetColdEmail(ctx, rec.AccountID, rec.FromEmail)
	if err != nil {
		return coldemail.Record{}, err
	}
	if stored == nil {
		return coldemail.Record{}, fmt.Errorf("cold email for %s vanished after upsert", rec.FromEmail)
	}
	return *stored, nil
}

// ListColdSenders returns the verdicts for an account ordered by most
// recently updated. A non-positive limit returns all rows.
func (s *SQLiteStore) ListColdSenders(ctx context.Context, accountID string, limit int) ([]coldemail.Record, error) {
	query := `
		SELECT * FROM cold_emails
		WHERE account_id = ?
		ORDER BY updated_at DESC`
	args := []interface{}{accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var recs []coldemail.Record
	if err := s.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("listing cold senders: %w", err)
	}
	return recs, nil
}

// MarkSenderNotCold records a user override for a sender. The sender will
// no longer match the known-cold check; future emails go back through the
// full pipeline.
func (s *SQLiteStore) MarkSenderNotCold(ctx context.Context, accountID, fromEmail string) error {
	rec := coldemail.Record{
		AccountID: accountID,
		FromEmail: fromEmail,
		Status:    coldemail.StatusUserLabeledNotCold,
	}
	if _, err := s.UpsertColdEmail(ctx, rec); err != nil {
		return fmt.Errorf("marking sender not cold: %w", err)
	}
	return nil
}
