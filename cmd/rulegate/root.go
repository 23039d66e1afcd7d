package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rulegate",
	Short: "Rulegate - rule-based text governance engine",
	Long: `Rulegate applies an ordered set of configurable pattern rules to input
text to redact, flag, block, or transform sensitive substrings (SSNs,
emails, credit-card numbers, credentials, dates, ...), returning both the
modified text and a structured audit trail of what matched.

Rules and rule sets are managed through the MCP server or directly in
the persisted configuration document.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
