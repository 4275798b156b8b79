// Package coldemail classifies inbound emails as cold outreach and applies
// per-account blocker policies to them.
//
// Classification is tiered so the expensive model call is the last resort:
//
//  1. A sender the model already marked cold stays cold. Senders the user
//     cleared are never re-matched here.
//  2. Any prior communication with the sender (or their company domain)
//     before the email's date means the email is not cold.
//  3. Otherwise a language model judges the email against the account's
//     instructions.
//
// Cold verdicts are persisted per (account, sender) and the account's
// blocker policy decides whether the thread is labeled, archived, and
// marked read.
package coldemail
