package coldemail

import (
	"fmt"
	"strings"
)

// bodyTruncateLen caps how many characters of the body are sent to the
// model.
const bodyTruncateLen = 500

// DefaultPrompt describes what counts as a cold email when the account has
// not configured its own instructions.
const DefaultPrompt = `Examples of cold emails are:

- Sales pitches from people you have never interacted with
- Recruiters or agencies reaching out about services you never asked for
- Link building, guest post, or SEO outreach
- Requests to get on a call from someone with no prior relationship

These are NOT cold emails:

- Replies to a conversation you started
- Messages from colleagues, customers, or existing contacts
- Transactional mail such as receipts, notifications, or account alerts
- Newsletters the recipient signed up for`

// buildSystemPrompt composes the system prompt from the account's
// instructions (or the default) plus the classifier framing.
func buildSystemPrompt(account Account) string {
	instructions := account.Prompt
	if instructions == "" {
		instructions = DefaultPrompt
	}
	return "You are an assistant that decides if an email is a cold email or not.\n\n" +
		"<instructions>\n" + instructions + "\n</instructions>"
}

// buildUserPrompt wraps the email content for the model, truncating the
// body so a long message cannot blow up the request.
func buildUserPrompt(email Email) string {
	return "Determine if the following email is a cold email or not:\n\n" +
		"<email>\n" + stringifyEmail(email, bodyTruncateLen) + "\n</email>"
}

// stringifyEmail renders the fields a model needs to judge an email.
func stringifyEmail(email Email, maxBodyLen int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<from>%s</from>\n", email.From)
	fmt.Fprintf(&sb, "<subject>%s</subject>\n", email.Subject)
	fmt.Fprintf(&sb, "<body>%s</body>", truncate(email.Body, maxBodyLen))
	return sb.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
