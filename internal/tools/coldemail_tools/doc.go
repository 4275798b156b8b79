// Package coldemail_tools provides MCP (Model Context Protocol) tools for
// cold-email classification and blocking.
//
// Classification:
//   - coldemail_classify_message: Classify a Gmail message by ID; unless run
//     in dry-run mode, cold verdicts are persisted and the account's blocker
//     policy is applied to the mailbox
//   - coldemail_classify_content: Classify ad-hoc content (sender, subject,
//     body) without any side effects
//
// Sender Management:
//   - coldemail_list_senders: List senders with persisted verdicts
//   - coldemail_mark_not_cold: Clear a sender (user override)
//
// Settings:
//   - coldemail_get_settings: Read the account's blocker policy, custom
//     prompt, and model preferences
//   - coldemail_update_settings: Change those settings
//
// Write tools (coldemail_mark_not_cold, coldemail_update_settings) are not
// registered when the server runs in read-only mode, and
// coldemail_classify_message is forced into dry-run.
//
// All tools require an authenticated Gmail client which is provided through
// the server context. The client handles OAuth2 authentication and token
// management.
package coldemail_tools
