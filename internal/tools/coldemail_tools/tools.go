package coldemail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/coldguard/internal/instrumentation"
	"github.com/teemow/coldguard/internal/server"
	"github.com/teemow/coldguard/internal/tools/common"
)

// RegisterColdEmailTools registers all cold-email tools with the MCP server.
// Write tools are not registered when readOnly is set; classification tools
// stay available but are forced into dry-run mode.
func RegisterColdEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerClassifyTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register classify tools: %w", err)
	}

	if err := registerSenderTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register sender tools: %w", err)
	}

	if err := registerSettingsTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register settings tools: %w", err)
	}

	return nil
}

func registerClassifyTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Classify a mailbox message by ID
	classifyMessageTool := mcp.NewTool("coldemail_classify_message",
		mcp.WithDescription("Classify a Gmail message as cold email or not. Unless dryRun is set, a cold verdict is persisted and the account's blocker policy (labeling, archiving, marking read) is applied."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to classify"),
		),
		mcp.WithBoolean("dryRun",
			mcp.Description("Classify only; do not persist the verdict or touch the mailbox (default: false)"),
		),
	)

	s.AddTool(classifyMessageTool, common.InstrumentedToolHandlerWithService(
		"coldemail_classify_message", instrumentation.ServiceGmail, instrumentation.OperationClassify, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassifyMessage(ctx, request, sc, readOnly)
		}))

	// Classify ad-hoc content without touching any mailbox
	classifyContentTool := mcp.NewTool("coldemail_classify_content",
		mcp.WithDescription("Classify ad-hoc email content (sender, subject, body) as cold email or not. Never persists a verdict or modifies the mailbox."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Supplies the account's custom prompt and model preferences when available."),
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Sender email address (e.g., 'seller@example.com')"),
		),
		mcp.WithString("subject",
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Description("Email body text"),
		),
	)

	s.AddTool(classifyContentTool, common.InstrumentedToolHandlerWithService(
		"coldemail_classify_content", instrumentation.ServiceGmail, instrumentation.OperationClassify, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassifyContent(ctx, request, sc)
		}))

	return nil
}

func registerSenderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List known cold senders
	listSendersTool := mcp.NewTool("coldemail_list_senders",
		mcp.WithDescription("List senders with persisted cold-email verdicts for the account, newest first"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of senders to return (default: all)"),
		),
	)

	s.AddTool(listSendersTool, common.InstrumentedToolHandlerWithService(
		"coldemail_list_senders", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSenders(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Mark a sender as not cold (user override)
	markNotColdTool := mcp.NewTool("coldemail_mark_not_cold",
		mcp.WithDescription("Mark a sender as not cold. Overrides the model's verdict; future emails from this sender go through the full classification pipeline again."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Sender email address (string) or array of addresses to clear"),
		),
	)

	s.AddTool(markNotColdTool, common.InstrumentedToolHandlerWithService(
		"coldemail_mark_not_cold", instrumentation.ServiceGmail, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMarkNotCold(ctx, request, sc)
		}))

	return nil
}

func registerSettingsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Read account settings
	getSettingsTool := mcp.NewTool("coldemail_get_settings",
		mcp.WithDescription("Get the account's cold-email settings: blocker policy, custom prompt, and model preferences. The API key is masked."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(getSettingsTool, common.InstrumentedToolHandlerWithService(
		"coldemail_get_settings", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSettings(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Update account settings
	updateSettingsTool := mcp.NewTool("coldemail_update_settings",
		mcp.WithDescription("Update the account's cold-email settings. Only provided fields change; pass an empty string to clear the prompt or model preferences."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("blocker",
			mcp.Description("Blocker policy: DISABLED, LABEL, ARCHIVE_AND_LABEL, or ARCHIVE_AND_READ_AND_LABEL"),
		),
		mcp.WithString("prompt",
			mcp.Description("Custom classification instructions replacing the built-in prompt"),
		),
		mcp.WithString("aiProvider",
			mcp.Description("Preferred model provider for this account (e.g., 'anthropic', 'openai', 'ollama')"),
		),
		mcp.WithString("aiModel",
			mcp.Description("Preferred model for this account (e.g., 'claude-sonnet-4-20250514')"),
		),
		mcp.WithString("aiApiKey",
			mcp.Description("Account-specific API key for the preferred provider"),
		),
	)

	s.AddTool(updateSettingsTool, common.InstrumentedToolHandlerWithService(
		"coldemail_update_settings", instrumentation.ServiceGmail, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateSettings(ctx, request, sc)
		}))

	return nil
}
