package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id                 TEXT PRIMARY KEY,
	email              TEXT NOT NULL UNIQUE,
	cold_email_blocker TEXT NOT NULL DEFAULT 'LABEL',
	cold_email_prompt  TEXT NOT NULL DEFAULT '',
	ai_provider        TEXT NOT NULL DEFAULT '',
	ai_model           TEXT NOT NULL DEFAULT '',
	ai_api_key         TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cold_emails (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	from_email TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'AI_LABELED_COLD',
	reason     TEXT,
	message_id TEXT,
	thread_id  TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(account_id, from_email)
);

CREATE INDEX IF NOT EXISTS idx_cold_emails_account_status ON cold_emails(account_id, status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
