package gmail

import (
	"context"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/coldguard/internal/coldemail"
)

// ColdEmailLabelName is the user-visible label applied to cold emails.
const ColdEmailLabelName = "Cold Email"

// GetOrCreateColdEmailLabel returns the cold-email label, creating it on
// first use. Lookup is case-insensitive so a label the user renamed in a
// different case is still found.
func (c *Client) GetOrCreateColdEmailLabel(ctx context.Context) (*coldemail.Label, error) {
	res, err := c.svc.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range res.Labels {
		if strings.EqualFold(l.Name, ColdEmailLabelName) {
			return &coldemail.Label{ID: l.Id, Name: l.Name}, nil
		}
	}

	created, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  ColdEmailLabelName,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", ColdEmailLabelName, err)
	}
	return &coldemail.Label{ID: created.Id, Name: created.Name}, nil
}

// LabelMessage adds a label to a message.
func (c *Client) LabelMessage(ctx context.Context, messageID, labelID string) error {
	_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to label message %s: %w", messageID, err)
	}
	return nil
}
