package coldemail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/coldguard/internal/coldemail"
	"github.com/teemow/coldguard/internal/gmail"
	"github.com/teemow/coldguard/internal/server"
	"github.com/teemow/coldguard/internal/tools/batch"
	"github.com/teemow/coldguard/internal/tools/common"
)

// resolveAccount returns the Gmail client and stored account settings for
// the account named in the request arguments. The returned tool result is
// non-nil when resolution failed and should be returned to the caller as-is.
func resolveAccount(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (*gmail.Client, coldemail.Account, *mcp.CallToolResult) {
	name := common.GetAccountFromArgs(args)

	client := sc.GmailClientForAccount(name)
	if client == nil {
		return nil, coldemail.Account{}, mcp.NewToolResultError(
			fmt.Sprintf("No Gmail client for account %q. %s", name, gmail.GetAuthenticationErrorMessage(name)))
	}

	account, err := sc.AccountForName(ctx, name)
	if err != nil {
		return nil, coldemail.Account{}, mcp.NewToolResultError(
			fmt.Sprintf("Failed to resolve account %q: %v", name, err))
	}

	return client, account, nil
}

func handleClassifyMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, readOnly bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	// messageId can be a single ID or an array of IDs
	messageIDs, err := batch.ParseStringOrArray(args["messageId"], "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dryRun, _ := args["dryRun"].(bool)
	if readOnly {
		dryRun = true
	}

	client, account, errResult := resolveAccount(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	classifier := coldemail.NewClassifier(sc.Store(), client, sc.Router(), sc.Invoker(), classifierOptions(sc)...)

	classifyOne := func(messageID string) (coldemail.Result, error) {
		msg, err := client.GetMessage(ctx, messageID)
		if err != nil {
			return coldemail.Result{}, fmt.Errorf("failed to get message %s: %w", messageID, err)
		}

		email := gmail.EmailFromMessage(msg)
		if email.From == "" {
			return coldemail.Result{}, fmt.Errorf("message %s has no parseable sender", messageID)
		}

		if dryRun {
			return classifier.Classify(ctx, account, email)
		}
		return classifier.Run(ctx, account, email)
	}

	if len(messageIDs) == 1 {
		result, err := classifyOne(messageIDs[0])
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Classification failed: %v", err)), nil
		}
		return toolResultJSON(struct {
			coldemail.Result
			DryRun bool `json:"dryRun,omitempty"`
		}{Result: result, DryRun: dryRun})
	}

	results := batch.ProcessBatch(messageIDs, func(messageID string) (string, error) {
		result, err := classifyOne(messageID)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleClassifyContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	from, ok := args["from"].(string)
	if !ok || from == "" {
		return mcp.NewToolResultError("'from' field is required"), nil
	}

	email := coldemail.Email{From: from}
	if subject, ok := args["subject"].(string); ok {
		email.Subject = subject
	}
	if body, ok := args["body"].(string); ok {
		email.Body = body
	}

	// Ad-hoc content has no message ID or date, so the classifier skips
	// the prior-communication check and no mailbox access is needed. The
	// account row, when resolvable, still supplies the custom prompt and
	// model preferences.
	var account coldemail.Account
	name := common.GetAccountFromArgs(args)
	if client := sc.GmailClientForAccount(name); client != nil {
		resolved, err := sc.AccountForName(ctx, name)
		if err == nil {
			account = resolved
		}
	}

	classifier := coldemail.NewClassifier(sc.Store(), nil, sc.Router(), sc.Invoker(), classifierOptions(sc)...)

	result, err := classifier.Classify(ctx, account, email)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Classification failed: %v", err)), nil
	}

	return toolResultJSON(result)
}

// classifierOptions wires the server's metrics recorder into a classifier
// when instrumentation is configured.
func classifierOptions(sc *server.ServerContext) []coldemail.ClassifierOption {
	var opts []coldemail.ClassifierOption
	if m := sc.Metrics(); m != nil {
		opts = append(opts, coldemail.WithMetrics(m))
	}
	return opts
}

// toolResultJSON marshals v as indented JSON into a tool result.
func toolResultJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
