// Package store persists accounts and cold-email verdicts in a local
// SQLite database.
//
// The database is a single file with WAL enabled and a versioned schema.
// Verdicts are keyed by (account, sender): a sender is marked cold at most
// once and later classifications update the row in place, so user
// overrides survive re-classification.
package store
