// Package gmail provides the Gmail capability surface for cold-email
// classification.
//
// A Client is bound to one authenticated account and covers exactly what
// the pipeline needs: searching for prior communication with a sender or
// their domain, reading threads and messages, and the blocker actions
// (labeling, archiving, marking read). Message content is reduced to the
// from/subject/body shape the classifier consumes.
//
// Authentication is handled by the google package; a client is only
// constructed once a valid OAuth token exists for the account.
package gmail
