package engine

import (
	"fmt"
	"regexp"

	"rulegate/pkg/rules"
)

// Defaults applied when block/flag rules omit the corresponding
// parameters, matching the persisted document format.
const (
	defaultBlockReason   = "Blocked by rule"
	defaultBlockSeverity = "high"
	defaultFlagReason    = "Flagged by rule"
	defaultFlagSeverity  = "info"
)

// Outcome is the effect of applying one rule to the current text state.
type Outcome struct {
	// Text is the text after the rule's edits (unchanged for flag and
	// block rules).
	Text string

	// Results are the audit entries the rule produced.
	Results []Result

	// Blocked is set when a block rule matched; the fold terminates.
	Blocked bool
}

// Dispatcher applies a single rule's action semantics to a text
// snapshot.
type Dispatcher interface {
	// Apply evaluates the rule's matcher against text and returns the
	// outcome. An error means the rule could not be applied; the caller
	// records it and continues with the text unchanged.
	Apply(rule *rules.Rule, matcher *regexp.Regexp, text string) (*Outcome, error)
}

// ActionDispatcher is the default Dispatcher covering the four built-in
// actions.
type ActionDispatcher struct{}

// NewActionDispatcher creates the default dispatcher.
func NewActionDispatcher() *ActionDispatcher {
	return &ActionDispatcher{}
}

// Apply dispatches on the rule's action. The switch is exhaustive over
// the known actions; anything else is an unsupported-action error that
// the engine converts into an "error" result entry.
func (d *ActionDispatcher) Apply(rule *rules.Rule, matcher *regexp.Regexp, text string) (*Outcome, error) {
	switch rule.Action {
	case rules.ActionBlock:
		return d.applyBlock(rule, matcher, text), nil
	case rules.ActionRedact:
		return d.applyRedact(rule, matcher, text), nil
	case rules.ActionFlag:
		return d.applyFlag(rule, matcher, text), nil
	case rules.ActionTransform:
		return d.applyTransform(rule, matcher, text)
	default:
		return nil, fmt.Errorf("unsupported action: %s", rule.Action)
	}
}

// applyBlock terminates processing when the pattern matches anywhere in
// the current text. The single block entry is the whole audit trail.
func (d *ActionDispatcher) applyBlock(rule *rules.Rule, matcher *regexp.Regexp, text string) *Outcome {
	if !matcher.MatchString(text) {
		return &Outcome{Text: text}
	}

	return &Outcome{
		Text:    "",
		Blocked: true,
		Results: []Result{{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Action:   ResultBlock,
			Reason:   rule.StringParam("reason", defaultBlockReason),
			Severity: rule.StringParam("severity", defaultBlockSeverity),
		}},
	}
}

// applyRedact records every match, then substitutes the replacement for
// all occurrences at once.
func (d *ActionDispatcher) applyRedact(rule *rules.Rule, matcher *regexp.Regexp, text string) *Outcome {
	out := &Outcome{Text: text}

	for _, match := range matcher.FindAllStringSubmatch(text, -1) {
		out.Results = append(out.Results, Result{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Action:      ResultRedact,
			Original:    matchedText(matcher, match),
			Replacement: rule.Replacement,
		})
	}

	if len(out.Results) > 0 {
		// Literal substitution: a replacement like "<$100>" must not be
		// expanded as a group reference.
		out.Text = matcher.ReplaceAllLiteralString(text, rule.Replacement)
	}
	return out
}

// applyFlag records matches without touching the text.
func (d *ActionDispatcher) applyFlag(rule *rules.Rule, matcher *regexp.Regexp, text string) *Outcome {
	out := &Outcome{Text: text}

	for _, match := range matcher.FindAllStringSubmatch(text, -1) {
		out.Results = append(out.Results, Result{
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			Action:     ResultFlag,
			Text:       matchedText(matcher, match),
			FlagReason: rule.StringParam("flag_reason", defaultFlagReason),
			Severity:   rule.StringParam("severity", defaultFlagSeverity),
		})
	}
	return out
}

// applyTransform dispatches on the transform kind from the rule's
// parameters. Only the date kind is defined.
func (d *ActionDispatcher) applyTransform(rule *rules.Rule, matcher *regexp.Regexp, text string) (*Outcome, error) {
	kind := rule.StringParam("transform_type", "")
	switch kind {
	case "date":
		return d.applyDateTransform(rule, matcher, text), nil
	default:
		return nil, fmt.Errorf("unsupported transform type: %q", kind)
	}
}

// matchedText returns the first capturing group's text when the pattern
// has groups, otherwise the full match.
func matchedText(matcher *regexp.Regexp, match []string) string {
	if matcher.NumSubexp() > 0 && len(match) > 1 {
		return match[1]
	}
	return match[0]
}
