package coldemail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/coldguard/internal/coldemail"
	"github.com/teemow/coldguard/internal/logging"
	"github.com/teemow/coldguard/internal/server"
)

// accountSettings is the JSON shape of an account's cold-email settings.
// The API key is masked; only its length is reported.
type accountSettings struct {
	Account    string `json:"account"`
	Blocker    string `json:"blocker"`
	Prompt     string `json:"prompt,omitempty"`
	AIProvider string `json:"aiProvider,omitempty"`
	AIModel    string `json:"aiModel,omitempty"`
	AIAPIKey   string `json:"aiApiKey,omitempty"`
}

func settingsFromAccount(account coldemail.Account) accountSettings {
	settings := accountSettings{
		Account:    account.Email,
		Blocker:    string(account.Blocker),
		Prompt:     account.Prompt,
		AIProvider: account.AI.Provider,
		AIModel:    account.AI.Model,
	}
	if account.AI.APIKey != "" {
		settings.AIAPIKey = logging.SanitizeKey(account.AI.APIKey)
	}
	return settings
}

func handleGetSettings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	_, account, errResult := resolveAccount(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	return toolResultJSON(settingsFromAccount(account))
}

func handleUpdateSettings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	_, account, errResult := resolveAccount(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	changed := false

	if blockerVal, ok := args["blocker"].(string); ok && blockerVal != "" {
		policy, err := coldemail.ParseBlockerPolicy(blockerVal)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		account.Blocker = policy
		changed = true
	}

	if promptVal, ok := args["prompt"].(string); ok {
		account.Prompt = promptVal
		changed = true
	}
	if providerVal, ok := args["aiProvider"].(string); ok {
		account.AI.Provider = providerVal
		changed = true
	}
	if modelVal, ok := args["aiModel"].(string); ok {
		account.AI.Model = modelVal
		changed = true
	}
	if keyVal, ok := args["aiApiKey"].(string); ok {
		account.AI.APIKey = keyVal
		changed = true
	}

	if !changed {
		return mcp.NewToolResultError("No settings provided; pass at least one of blocker, prompt, aiProvider, aiModel, aiApiKey"), nil
	}

	if err := sc.Store().UpdateAccountSettings(ctx, account); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update settings: %v", err)), nil
	}

	return toolResultJSON(settingsFromAccount(account))
}
