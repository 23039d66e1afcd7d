package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rulegate/pkg/rules"
	"rulegate/pkg/rules/engine"
)

// NewServer creates an MCP server with the rule engine tools registered.
func NewServer(name, version string, repo *rules.Repository, eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)

	h := &Handlers{repo: repo, engine: eng}

	s.AddTool(
		mcp.NewTool("process_text",
			mcp.WithDescription("Process text through the rules engine, returning the transformed text and an audit trail"),
			mcp.WithString("text", mcp.Required(), mcp.Description("The text to process")),
			mcp.WithArray("rule_sets", mcp.Description("IDs of rule sets to apply (default: the default rule set)")),
		),
		h.HandleProcessText,
	)

	s.AddTool(
		mcp.NewTool("redact_text",
			mcp.WithDescription("Redact sensitive text using the default rule set"),
			mcp.WithString("text", mcp.Required(), mcp.Description("The text to redact")),
		),
		h.HandleRedactText,
	)

	s.AddTool(
		mcp.NewTool("get_rules",
			mcp.WithDescription("Get all rules, or the rules of a specific rule set"),
			mcp.WithString("rule_set_id", mcp.Description("Rule set ID (default: all rules)")),
		),
		h.HandleGetRules,
	)

	s.AddTool(
		mcp.NewTool("get_rule",
			mcp.WithDescription("Get a specific rule by ID"),
			mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
		),
		h.HandleGetRule,
	)

	s.AddTool(
		mcp.NewTool("add_rule",
			mcp.WithDescription("Add a new rule; the condition must be a valid regular expression"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Rule name")),
			mcp.WithString("condition", mcp.Required(), mcp.Description("Regular expression to match")),
			mcp.WithString("action", mcp.Required(), mcp.Description("Action: redact, flag, block, or transform")),
			mcp.WithString("description", mcp.Description("Rule description")),
			mcp.WithString("replacement", mcp.Description("Replacement text for redact rules")),
			mcp.WithObject("parameters", mcp.Description("Action-specific parameters")),
			mcp.WithNumber("priority", mcp.Description("Rule priority; higher runs first")),
		),
		h.HandleAddRule,
	)

	s.AddTool(
		mcp.NewTool("update_rule",
			mcp.WithDescription("Update fields of an existing rule"),
			mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
			mcp.WithString("name", mcp.Description("Rule name")),
			mcp.WithString("description", mcp.Description("Rule description")),
			mcp.WithString("condition", mcp.Description("Regular expression to match")),
			mcp.WithString("action", mcp.Description("Action: redact, flag, block, or transform")),
			mcp.WithString("replacement", mcp.Description("Replacement text for redact rules")),
			mcp.WithObject("parameters", mcp.Description("Action-specific parameters")),
			mcp.WithBoolean("enabled", mcp.Description("Whether the rule is enabled")),
			mcp.WithNumber("priority", mcp.Description("Rule priority; higher runs first")),
		),
		h.HandleUpdateRule,
	)

	s.AddTool(
		mcp.NewTool("delete_rule",
			mcp.WithDescription("Delete a rule and remove it from every rule set"),
			mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
		),
		h.HandleDeleteRule,
	)

	s.AddTool(
		mcp.NewTool("get_rule_sets",
			mcp.WithDescription("Get all rule sets and the default rule set ID"),
		),
		h.HandleGetRuleSets,
	)

	s.AddTool(
		mcp.NewTool("get_rule_set",
			mcp.WithDescription("Get a rule set with its resolved rules"),
			mcp.WithString("rule_set_id", mcp.Required(), mcp.Description("Rule set ID")),
		),
		h.HandleGetRuleSet,
	)

	s.AddTool(
		mcp.NewTool("add_rule_set",
			mcp.WithDescription("Add a new rule set"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Rule set name")),
			mcp.WithString("description", mcp.Description("Rule set description")),
			mcp.WithArray("rule_ids", mcp.Description("Rule IDs to include")),
		),
		h.HandleAddRuleSet,
	)

	s.AddTool(
		mcp.NewTool("update_rule_set",
			mcp.WithDescription("Update fields of an existing rule set"),
			mcp.WithString("rule_set_id", mcp.Required(), mcp.Description("Rule set ID")),
			mcp.WithString("name", mcp.Description("Rule set name")),
			mcp.WithString("description", mcp.Description("Rule set description")),
			mcp.WithArray("rule_ids", mcp.Description("Rule IDs replacing the membership list")),
			mcp.WithBoolean("enabled", mcp.Description("Whether the rule set is enabled")),
		),
		h.HandleUpdateRuleSet,
	)

	s.AddTool(
		mcp.NewTool("delete_rule_set",
			mcp.WithDescription("Delete a rule set (the default rule set cannot be deleted)"),
			mcp.WithString("rule_set_id", mcp.Required(), mcp.Description("Rule set ID")),
		),
		h.HandleDeleteRuleSet,
	)

	s.AddTool(
		mcp.NewTool("set_default_rule_set",
			mcp.WithDescription("Designate an existing rule set as the default"),
			mcp.WithString("rule_set_id", mcp.Required(), mcp.Description("Rule set ID")),
		),
		h.HandleSetDefaultRuleSet,
	)

	return s
}
