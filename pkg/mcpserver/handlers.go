package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"rulegate/pkg/rules"
	"rulegate/pkg/rules/engine"
)

// Handlers implements the MCP tool handlers over the repository and
// engine.
type Handlers struct {
	repo   *rules.Repository
	engine *engine.Engine
}

// NewHandlers creates the tool handlers. Exposed for tests; NewServer
// wires them for production use.
func NewHandlers(repo *rules.Repository, eng *engine.Engine) *Handlers {
	return &Handlers{repo: repo, engine: eng}
}

// HandleProcessText implements the process_text tool.
func (h *Handlers) HandleProcessText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return errorResult("text argument is required"), nil
	}

	result := h.engine.ProcessText(ctx, text, stringSlice(args["rule_sets"]))
	return jsonResult(result), nil
}

// HandleRedactText implements the redact_text tool: process with the
// default rule set but report only the redactions.
func (h *Handlers) HandleRedactText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return errorResult("text argument is required"), nil
	}

	result := h.engine.ProcessText(ctx, text, nil)
	return jsonResult(result.Redactions()), nil
}

// HandleGetRules implements the get_rules tool.
func (h *Handlers) HandleGetRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var list []*rules.Rule
	if setID, _ := args["rule_set_id"].(string); setID != "" {
		list = h.repo.RulesBySet(setID)
	} else {
		list = h.repo.Rules()
	}

	return jsonResult(map[string]any{"rules": list}), nil
}

// HandleGetRule implements the get_rule tool.
func (h *Handlers) HandleGetRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["rule_id"].(string)
	if id == "" {
		return errorResult("rule_id argument is required"), nil
	}

	rule, err := h.repo.Rule(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"rule": rule}), nil
}

// HandleAddRule implements the add_rule tool.
func (h *Handlers) HandleAddRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, _ := args["name"].(string)
	condition, _ := args["condition"].(string)
	action, _ := args["action"].(string)
	if name == "" || condition == "" || action == "" {
		return errorResult("name, condition, and action arguments are required"), nil
	}

	rule := &rules.Rule{
		Name:        name,
		Condition:   condition,
		Action:      rules.Action(action),
		Description: stringArg(args, "description"),
		Replacement: stringArg(args, "replacement"),
		Priority:    intArg(args, "priority"),
	}
	if params, ok := args["parameters"].(map[string]any); ok {
		rule.Parameters = params
	}

	id, err := h.repo.AddRule(ctx, rule)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	stored, err := h.repo.Rule(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"rule_id": id, "rule": stored}), nil
}

// HandleUpdateRule implements the update_rule tool.
func (h *Handlers) HandleUpdateRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["rule_id"].(string)
	if id == "" {
		return errorResult("rule_id argument is required"), nil
	}

	upd := rules.RuleUpdate{
		Name:        optionalString(args, "name"),
		Description: optionalString(args, "description"),
		Condition:   optionalString(args, "condition"),
		Replacement: optionalString(args, "replacement"),
		Enabled:     optionalBool(args, "enabled"),
		Priority:    optionalInt(args, "priority"),
	}
	if action := optionalString(args, "action"); action != nil {
		a := rules.Action(*action)
		upd.Action = &a
	}
	if params, ok := args["parameters"].(map[string]any); ok {
		upd.Parameters = params
	}

	updated, err := h.repo.UpdateRule(ctx, id, upd)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"rule_id": id, "rule": updated}), nil
}

// HandleDeleteRule implements the delete_rule tool.
func (h *Handlers) HandleDeleteRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["rule_id"].(string)
	if id == "" {
		return errorResult("rule_id argument is required"), nil
	}

	if err := h.repo.DeleteRule(ctx, id); err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"success": true, "rule_id": id}), nil
}

// HandleGetRuleSets implements the get_rule_sets tool.
func (h *Handlers) HandleGetRuleSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sets, defaultID := h.repo.RuleSets()
	return jsonResult(map[string]any{
		"rule_sets":        sets,
		"default_rule_set": defaultID,
	}), nil
}

// HandleGetRuleSet implements the get_rule_set tool.
func (h *Handlers) HandleGetRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["rule_set_id"].(string)
	if id == "" {
		return errorResult("rule_set_id argument is required"), nil
	}

	set, isDefault, err := h.repo.RuleSet(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"rule_set":   set,
		"rules":      h.repo.RulesBySet(id),
		"is_default": isDefault,
	}), nil
}

// HandleAddRuleSet implements the add_rule_set tool.
func (h *Handlers) HandleAddRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}

	set := &rules.RuleSet{
		Name:        name,
		Description: stringArg(args, "description"),
		Rules:       stringSlice(args["rule_ids"]),
	}

	id, err := h.repo.AddRuleSet(ctx, set)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	stored, _, err := h.repo.RuleSet(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"rule_set_id": id, "rule_set": stored}), nil
}

// HandleUpdateRuleSet implements the update_rule_set tool.
func (h *Handlers) HandleUpdateRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["rule_set_id"].(string)
	if id == "" {
		return errorResult("rule_set_id argument is required"), nil
	}

	upd := rules.RuleSetUpdate{
		Name:        optionalString(args, "name"),
		Description: optionalString(args, "description"),
		Enabled:     optionalBool(args, "enabled"),
	}
	if _, ok := args["rule_ids"]; ok {
		ids := stringSlice(args["rule_ids"])
		upd.Rules = &ids
	}

	updated, err := h.repo.UpdateRuleSet(ctx, id, upd)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"rule_set_id": id, "rule_set": updated}), nil
}

// HandleDeleteRuleSet implements the delete_rule_set tool.
func (h *Handlers) HandleDeleteRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["rule_set_id"].(string)
	if id == "" {
		return errorResult("rule_set_id argument is required"), nil
	}

	if err := h.repo.DeleteRuleSet(ctx, id); err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"success": true, "rule_set_id": id}), nil
}

// HandleSetDefaultRuleSet implements the set_default_rule_set tool.
func (h *Handlers) HandleSetDefaultRuleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["rule_set_id"].(string)
	if id == "" {
		return errorResult("rule_set_id argument is required"), nil
	}

	if err := h.repo.SetDefaultRuleSet(ctx, id); err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"success": true, "default_rule_set": id}), nil
}

// stringArg returns a string argument or "".
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg returns a numeric argument as int, defaulting to 0. JSON
// numbers arrive as float64.
func intArg(args map[string]any, key string) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return 0
}

// optionalString returns a pointer to a string argument, or nil when
// absent.
func optionalString(args map[string]any, key string) *string {
	if s, ok := args[key].(string); ok {
		return &s
	}
	return nil
}

// optionalBool returns a pointer to a bool argument, or nil when absent.
func optionalBool(args map[string]any, key string) *bool {
	if b, ok := args[key].(bool); ok {
		return &b
	}
	return nil
}

// optionalInt returns a pointer to a numeric argument, or nil when
// absent.
func optionalInt(args map[string]any, key string) *int {
	if f, ok := args[key].(float64); ok {
		i := int(f)
		return &i
	}
	return nil
}

// stringSlice converts a JSON array argument to a string slice,
// ignoring non-string members.
func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// jsonResult serializes v as indented JSON text content.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
	}
}

// errorResult wraps a domain failure as an IsError tool result.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}
