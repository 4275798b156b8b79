package gmail

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// freeEmailDomains are consumer mail providers. A sender on one of these
// shares a domain with unrelated strangers, so the prior-communication
// search must not widen to the whole domain.
var freeEmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"live.com":       true,
	"msn.com":        true,
	"icloud.com":     true,
	"me.com":         true,
	"aol.com":        true,
	"gmx.de":         true,
	"gmx.net":        true,
	"web.de":         true,
	"proton.me":      true,
	"protonmail.com": true,
}

// HasPreviousCommunicationsWithSenderOrDomain reports whether any message
// from the sender arrived before the given date, excluding the message
// under classification. For company domains the search covers the whole
// domain, so a colleague of a known contact is not treated as cold.
func (c *Client) HasPreviousCommunicationsWithSenderOrDomain(ctx context.Context, from string, before time.Time, excludeMessageID string) (bool, error) {
	q := previousCommunicationQuery(from, before)

	res, err := c.svc.Messages.List("me").Q(q).MaxResults(2).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to search previous communications: %w", err)
	}
	for _, m := range res.Messages {
		if m.Id != excludeMessageID {
			return true, nil
		}
	}
	return false, nil
}

// previousCommunicationQuery builds the Gmail search for mail from a sender
// (or their company domain) before a date. The before: operator takes epoch
// seconds; one second is added so a message in the same second still counts
// as prior.
func previousCommunicationQuery(from string, before time.Time) string {
	target := from
	if domain := addressDomain(from); domain != "" && !freeEmailDomains[domain] {
		target = domain
	}
	return fmt.Sprintf("from:%s before:%d", target, before.Unix()+1)
}

// addressDomain returns the domain part of an email address, lowercased.
func addressDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
