package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/coldguard/internal/coldemail"
)

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if strings.EqualFold(mph.Name, header) {
			return mph.Value
		}
	}
	return ""
}

// ParseSenderAddress extracts the bare address from a From header value
// such as `Jane Doe <jane@example.com>`. Malformed headers are returned
// trimmed as-is.
func ParseSenderAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	return addr.Address
}

// EmailFromMessage converts a full Gmail message into the classifier's
// email shape. The internal date is preferred over the Date header since
// Gmail normalizes it.
func EmailFromMessage(m *gmail.Message) coldemail.Email {
	email := coldemail.Email{
		From:      ParseSenderAddress(HeaderValue(m, "From")),
		Subject:   HeaderValue(m, "Subject"),
		Body:      MessageBody(m),
		MessageID: m.Id,
		ThreadID:  m.ThreadId,
	}
	if m.InternalDate > 0 {
		date := time.UnixMilli(m.InternalDate).UTC()
		email.Date = &date
	}
	return email
}

// MessageBody extracts the plain-text body of a message, falling back to
// the HTML part, then the snippet.
func MessageBody(m *gmail.Message) string {
	if body := bodyByMimeType(m.Payload, "text/plain"); body != "" {
		return body
	}
	if body := bodyByMimeType(m.Payload, "text/html"); body != "" {
		return body
	}
	return m.Snippet
}

// bodyByMimeType finds and decodes the first body part with the given MIME
// type.
func bodyByMimeType(part *gmail.MessagePart, mimeType string) string {
	var data string
	walkParts(part, func(p *gmail.MessagePart) {
		if data == "" && p.MimeType == mimeType && p.Body != nil && p.Body.Data != "" {
			data = p.Body.Data
		}
	})
	if data == "" {
		return ""
	}

	// Gmail API uses RFC 4648 base64url encoding.
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
