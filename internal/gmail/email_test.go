package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Jane Doe <jane@example.com>"},
				{Name: "Subject", Value: "Hello"},
			},
		},
	}

	assert.Equal(t, "Jane Doe <jane@example.com>", HeaderValue(msg, "From"))
	assert.Equal(t, "Hello", HeaderValue(msg, "subject"))
	assert.Empty(t, HeaderValue(msg, "Reply-To"))
	assert.Empty(t, HeaderValue(&gmail.Message{}, "From"))
}

func TestParseSenderAddress(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{name: "display name", from: "Jane Doe <jane@example.com>", want: "jane@example.com"},
		{name: "bare address", from: "jane@example.com", want: "jane@example.com"},
		{name: "quoted name", from: `"Doe, Jane" <jane@example.com>`, want: "jane@example.com"},
		{name: "malformed", from: "not an address", want: "not an address"},
		{name: "surrounding space", from: "  broken@  ", want: "broken@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSenderAddress(tt.from))
		})
	}
}

func TestEmailFromMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		InternalDate: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Seller <seller@outbound.example>"},
				{Name: "Subject", Value: "Quick question"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("plain body")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encodeBody("<p>html body</p>")},
				},
			},
		},
	}

	email := EmailFromMessage(msg)
	assert.Equal(t, "seller@outbound.example", email.From)
	assert.Equal(t, "Quick question", email.Subject)
	assert.Equal(t, "plain body", email.Body)
	assert.Equal(t, "msg-1", email.MessageID)
	assert.Equal(t, "thread-1", email.ThreadID)
	require.NotNil(t, email.Date)
	assert.Equal(t, 2026, email.Date.Year())
}

func TestEmailFromMessage_NoDate(t *testing.T) {
	email := EmailFromMessage(&gmail.Message{Id: "msg-1"})
	assert.Nil(t, email.Date)
}

func TestMessageBody_Fallbacks(t *testing.T) {
	t.Run("html when no plain part", func(t *testing.T) {
		msg := &gmail.Message{
			Payload: &gmail.MessagePart{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodeBody("<p>only html</p>")},
			},
		}
		assert.Equal(t, "<p>only html</p>", MessageBody(msg))
	})

	t.Run("snippet when no body at all", func(t *testing.T) {
		msg := &gmail.Message{Snippet: "snippet text"}
		assert.Equal(t, "snippet text", MessageBody(msg))
	})

	t.Run("nested multipart", func(t *testing.T) {
		msg := &gmail.Message{
			Payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{
								MimeType: "text/plain",
								Body:     &gmail.MessagePartBody{Data: encodeBody("nested plain")},
							},
						},
					},
				},
			},
		}
		assert.Equal(t, "nested plain", MessageBody(msg))
	})
}

func TestPreviousCommunicationQuery(t *testing.T) {
	before := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("company domain widens to domain", func(t *testing.T) {
		q := previousCommunicationQuery("seller@outbound.example", before)
		assert.Contains(t, q, "from:outbound.example")
		assert.NotContains(t, q, "seller@")
	})

	t.Run("free provider stays on full address", func(t *testing.T) {
		q := previousCommunicationQuery("someone@gmail.com", before)
		assert.Contains(t, q, "from:someone@gmail.com")
	})

	t.Run("date bound uses epoch seconds", func(t *testing.T) {
		q := previousCommunicationQuery("someone@gmail.com", before)
		assert.Contains(t, q, "before:")
		assert.Contains(t, q, "1773478801")
	})

	t.Run("address without domain", func(t *testing.T) {
		q := previousCommunicationQuery("noreply", before)
		assert.Contains(t, q, "from:noreply")
	})
}

func TestAddressDomain(t *testing.T) {
	assert.Equal(t, "example.com", addressDomain("user@example.com"))
	assert.Equal(t, "example.com", addressDomain("user@EXAMPLE.COM"))
	assert.Empty(t, addressDomain("no-at-sign"))
	assert.Empty(t, addressDomain("trailing@"))
}
