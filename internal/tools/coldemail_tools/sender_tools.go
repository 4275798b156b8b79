package coldemail_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/coldguard/internal/server"
	"github.com/teemow/coldguard/internal/tools/batch"
)

// senderEntry is the JSON shape of one listed cold sender.
type senderEntry struct {
	From      string    `json:"from"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	ThreadID  string    `json:"threadId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func handleListSenders(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	limit := 0
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}

	_, account, errResult := resolveAccount(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	records, err := sc.Store().ListColdSenders(ctx, account.ID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list cold senders: %v", err)), nil
	}

	entries := make([]senderEntry, 0, len(records))
	for _, rec := range records {
		entry := senderEntry{
			From:      rec.FromEmail,
			Status:    string(rec.Status),
			UpdatedAt: rec.UpdatedAt,
		}
		if rec.Reason != nil {
			entry.Reason = *rec.Reason
		}
		if rec.MessageID != nil {
			entry.MessageID = *rec.MessageID
		}
		if rec.ThreadID != nil {
			entry.ThreadID = *rec.ThreadID
		}
		entries = append(entries, entry)
	}

	return toolResultJSON(struct {
		Account string        `json:"account"`
		Senders []senderEntry `json:"senders"`
	}{Account: account.Email, Senders: entries})
}

func handleMarkNotCold(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	// from can be a single address or an array of addresses
	senders, err := batch.ParseStringOrArray(args["from"], "from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, account, errResult := resolveAccount(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if len(senders) == 1 {
		if err := sc.Store().MarkSenderNotCold(ctx, account.ID, senders[0]); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to mark sender as not cold: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Sender %s marked as not cold for account %s", senders[0], account.Email)), nil
	}

	results := batch.ProcessBatch(senders, func(from string) (string, error) {
		if err := sc.Store().MarkSenderNotCold(ctx, account.ID, from); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sender %s marked as not cold", from), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
