// Package google provides OAuth2 authentication and token management for
// the Gmail API.
//
// Tokens are stored per account as files under the user cache directory,
// so one process can serve several authenticated mailboxes. The
// TokenProvider interface allows other token sources to be plugged in.
package google
