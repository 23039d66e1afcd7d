package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"rulegate/pkg/rules"
)

var rulesListSet string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the configured rules and rule sets",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print rules as JSON",
	RunE:  runRulesList,
}

var rulesSetsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Print rule sets as JSON",
	RunE:  runRulesSets,
}

func init() {
	rulesListCmd.Flags().StringVar(&rulesListSet, "rule-set", "",
		"only show rules belonging to this rule set")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesSetsCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	env, err := setupRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	var list []*rules.Rule
	if rulesListSet != "" {
		list = env.repo.RulesBySet(rulesListSet)
	} else {
		list = env.repo.Rules()
	}
	return printJSON(map[string]any{"rules": list, "count": len(list)})
}

func runRulesSets(cmd *cobra.Command, args []string) error {
	env, err := setupRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	sets, defaultID := env.repo.RuleSets()
	return printJSON(map[string]any{"rule_sets": sets, "default_rule_set": defaultID})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
