package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/coldguard/internal/google"
)

// Client wraps the Gmail Users service for one account. It implements the
// mailbox capabilities the classifier needs.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// GetAuthenticationErrorMessage returns instructions for authorizing the
// given account.
func GetAuthenticationErrorMessage(account string) string {
	return google.GetAuthenticationErrorMessage(account)
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// Profile returns the email address of the authenticated mailbox.
func (c *Client) Profile(ctx context.Context) (string, error) {
	profile, err := c.svc.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// ArchiveThread archives a thread by removing the INBOX label.
// The account email is required so a misrouted client cannot archive in the
// wrong mailbox.
func (c *Client) ArchiveThread(ctx context.Context, threadID, accountEmail string) error {
	if accountEmail == "" {
		return fmt.Errorf("account email is required to archive thread %s", threadID)
	}
	_, err := c.svc.Threads.Modify("me", threadID, &gmail.ModifyThreadRequest{
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to archive thread %s: %w", threadID, err)
	}
	return nil
}

// MarkReadThread marks a thread read or unread by toggling the UNREAD label.
func (c *Client) MarkReadThread(ctx context.Context, threadID string, read bool) error {
	req := &gmail.ModifyThreadRequest{}
	if read {
		req.RemoveLabelIds = []string{"UNREAD"}
	} else {
		req.AddLabelIds = []string{"UNREAD"}
	}
	_, err := c.svc.Threads.Modify("me", threadID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark thread %s read=%t: %w", threadID, read, err)
	}
	return nil
}

// ForeachThread iterates over all threads matching the query
func (c *Client) ForeachThread(ctx context.Context, q string, fn func(*gmail.Thread) error) error {
	pageToken := ""
	for {
		req := c.svc.Threads.List("me").Q(q)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		res, err := req.Context(ctx).Do()
		if err != nil {
			return err
		}
		for _, t := range res.Threads {
			if err := fn(t); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// GetThread retrieves a full Gmail thread with all its messages
func (c *Client) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	thread, err := c.svc.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return thread, nil
}

// PopulateThread populates t with its full data. t.Id must be set initially.
func (c *Client) PopulateThread(ctx context.Context, t *gmail.Thread) error {
	tfull, err := c.svc.Threads.Get("me", t.Id).Format("full").Context(ctx).Do()
	if err != nil {
		return err
	}
	*t = *tfull
	return nil
}

// ListThreads lists threads matching the query with pagination
// It will fetch up to maxResults threads, making multiple API calls if necessary
func (c *Client) ListThreads(ctx context.Context, q string, maxResults int64) ([]*gmail.Thread, error) {
	var allThreads []*gmail.Thread
	pageToken := ""

	for {
		remaining := maxResults - int64(len(allThreads))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Threads.List("me").Q(q).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Context(ctx).Do()
		if err != nil {
			return nil, err
		}

		allThreads = append(allThreads, res.Threads...)

		if res.NextPageToken == "" || int64(len(allThreads)) >= maxResults {
			break
		}

		pageToken = res.NextPageToken
	}

	if int64(len(allThreads)) > maxResults {
		allThreads = allThreads[:maxResults]
	}

	return allThreads, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}
