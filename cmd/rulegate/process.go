package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rulegate/pkg/rules/engine"
)

var processRuleSets []string

var processCmd = &cobra.Command{
	Use:   "process [text]",
	Short: "Run text through the rule engine once and print the result",
	Long: `Process evaluates the given text against the configured rules and
prints the processing result as JSON. Text is read from stdin when no
argument is given.

Examples:
  rulegate process "My SSN is 123-45-6789."
  cat message.txt | rulegate process
  rulegate process --rule-set strict "Card: 4111 1111 1111 1111"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringArrayVar(&processRuleSets, "rule-set", nil,
		"rule set to evaluate (repeatable; defaults to the default rule set)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := inputText(args)
	if err != nil {
		return err
	}

	env, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	eng := engine.New(env.repo, env.logger, nil)
	result := eng.ProcessText(ctx, text, processRuleSets)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// inputText returns the positional argument, or stdin when none is given.
func inputText(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
