package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/coldguard/internal/logging"
	"github.com/teemow/coldguard/internal/server"
)

// RegisterUserResources registers resources describing the current user.
// These expose the mailbox profile and the cold-email settings of the
// default account.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated mailbox account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	settingsResource := mcp.NewResource(
		"user://coldemail/settings",
		"Cold Email Settings",
		mcp.WithResourceDescription("Cold-email classification settings for the current user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleColdEmailSettings(ctx, request, sc)
	})

	return nil
}

// defaultAccountName is the token-file account resources are served for.
// Resources carry no arguments, so unlike tools they cannot select an
// account per call.
const defaultAccountName = "default"

// handleUserProfile returns information about the current user's mailbox.
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client := sc.GmailClientForAccount(defaultAccountName)
	if client == nil {
		return nil, fmt.Errorf("no Gmail client available for account: %s", defaultAccountName)
	}

	email, err := client.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	account, err := sc.Store().GetOrCreateAccount(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	profileData := map[string]interface{}{
		"account":   defaultAccountName,
		"email":     email,
		"accountId": account.ID,
	}

	return jsonResourceContents(request.Params.URI, profileData)
}

// handleColdEmailSettings returns the cold-email settings for the current
// user. The account API key, if set, is masked.
func handleColdEmailSettings(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account, err := sc.AccountForName(ctx, defaultAccountName)
	if err != nil {
		return nil, fmt.Errorf("failed to load account settings: %w", err)
	}

	settingsData := map[string]interface{}{
		"account":      account.Email,
		"blocker":      string(account.Blocker),
		"customPrompt": account.Prompt != "",
	}
	if account.AI.Provider != "" {
		settingsData["aiProvider"] = account.AI.Provider
	}
	if account.AI.Model != "" {
		settingsData["aiModel"] = account.AI.Model
	}
	if account.AI.APIKey != "" {
		settingsData["aiApiKey"] = logging.SanitizeKey(account.AI.APIKey)
	}

	return jsonResourceContents(request.Params.URI, settingsData)
}

func jsonResourceContents(uri string, data map[string]interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
