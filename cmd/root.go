package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the coldguard application
var rootCmd = &cobra.Command{
	Use:   "coldguard",
	Short: "Detects and blocks cold emails in your Gmail inbox",
	Long: `coldguard classifies incoming Gmail messages as cold emails using a
language model, remembers known cold senders per account, and applies the
configured blocker actions (label, archive, mark read) to offenders.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "coldguard version %s\n" .Version}}`)

	// If no subcommand is provided, run the classify command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "classify")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
