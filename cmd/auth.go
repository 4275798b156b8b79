package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/coldguard/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth [auth-code]",
		Short: "Authorize coldguard to access a Google account",
		Long: `Authorize coldguard to access a Google account.

Run without arguments to print the authorization URL. Open the URL in a
browser, grant access, and run the command again with the authorization
code to store the token:

  coldguard auth
  coldguard auth --account work 4/0AX4XfW...

Tokens are stored per account name, so multiple accounts can be
authorized side by side.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("Open the following URL in your browser and authorize access:")
				fmt.Println()
				fmt.Println(google.GetAuthURL())
				fmt.Println()
				fmt.Printf("Then run: coldguard auth --account %s <auth-code>\n", account)
				return nil
			}

			ctx := context.Background()
			if err := google.SaveTokenForAccount(ctx, account, args[0]); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Printf("Token saved for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize (default: 'default')")
	return cmd
}
