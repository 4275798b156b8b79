package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/teemow/coldguard/internal/config"
	"github.com/teemow/coldguard/internal/gmail"
	"github.com/teemow/coldguard/internal/logging"
	"github.com/teemow/coldguard/internal/server"
)

// errSweepDone stops ForeachThread once the thread limit is reached.
var errSweepDone = errors.New("sweep limit reached")

func newClassifyCmd() *cobra.Command {
	var (
		account    string
		query      string
		dryRun     bool
		maxThreads int
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify inbox threads and block cold emails",
		Long: `Scan your Gmail inbox and classify the newest message of each thread as a
cold email or not. Known cold senders are blocked without consulting the
model; senders you previously exchanged mail with are never cold.

Cold emails are recorded per sender and, unless --dry-run is given, the
account's blocker policy is applied (label, archive, mark read).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(account, query, dryRun, maxThreads)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&query, "query", "in:inbox", "Gmail search query selecting the threads to classify")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify without persisting verdicts or touching the mailbox")
	cmd.Flags().IntVar(&maxThreads, "max", 0, "Maximum number of threads to process (0 = no limit)")
	return cmd
}

func runClassify(accountName, query string, dryRun bool, maxThreads int) error {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sc, err := server.NewServerContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	client := sc.GmailClientForAccount(accountName)
	if client == nil {
		return fmt.Errorf("no Gmail client for account %s: %s",
			accountName, gmail.GetAuthenticationErrorMessage(accountName))
	}

	account, err := sc.AccountForName(ctx, accountName)
	if err != nil {
		return fmt.Errorf("failed to resolve account %s: %w", accountName, err)
	}

	classifier, err := sc.ClassifierForAccount(accountName)
	if err != nil {
		return err
	}

	logger := logging.WithAccount(slog.Default(), accountName)

	processed := 0
	cold := 0
	err = client.ForeachThread(ctx, query, func(t *gmail_v1.Thread) error {
		if maxThreads > 0 && processed >= maxThreads {
			return errSweepDone
		}
		if err := client.PopulateThread(ctx, t); err != nil {
			return err
		}
		if len(t.Messages) == 0 {
			return nil
		}

		// Classify the newest message; older ones were seen in earlier runs.
		email := gmail.EmailFromMessage(t.Messages[len(t.Messages)-1])
		if email.From == "" {
			return nil
		}
		processed++

		classifyFn := classifier.Run
		if dryRun {
			classifyFn = classifier.Classify
		}
		res, cerr := classifyFn(ctx, account, email)
		if cerr != nil {
			logger.Warn("classification failed",
				logging.Sender(email.From),
				logging.ThreadID(t.Id),
				logging.Err(cerr))
			return nil
		}

		if res.IsColdEmail {
			cold++
			logger.Info("cold email detected",
				logging.Sender(email.From),
				logging.ThreadID(t.Id),
				logging.Reason(string(res.Reason)))
		} else {
			logger.Debug("not a cold email",
				logging.Sender(email.From),
				logging.ThreadID(t.Id),
				logging.Reason(string(res.Reason)))
		}
		return nil
	})
	if err != nil && !errors.Is(err, errSweepDone) {
		return fmt.Errorf("error processing threads: %w", err)
	}

	fmt.Printf("Processed %d threads, %d cold emails", processed, cold)
	if dryRun {
		fmt.Printf(" (dry run, no actions taken)")
	}
	fmt.Println()
	return nil
}
