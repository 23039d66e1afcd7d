package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"rulegate/pkg/rules"
	"rulegate/pkg/telemetry/metrics"
)

// RuleProvider supplies the engine with candidate rules and compiled
// matchers. *rules.Repository implements it.
type RuleProvider interface {
	// ResolveRules unions the rules of the given sets in caller order,
	// falling back to the default set when no ids are given.
	ResolveRules(setIDs []string) []*rules.Rule

	// Matcher returns the compiled matcher for a rule.
	Matcher(rule *rules.Rule) (*regexp.Regexp, error)
}

// Engine orchestrates rule evaluation over input text.
type Engine struct {
	provider   RuleProvider
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.EngineMetrics
}

// New creates an engine over the given rule provider. logger may be nil
// (slog.Default is used); m may be nil to disable instrumentation.
func New(provider RuleProvider, logger *slog.Logger, m *metrics.EngineMetrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider:   provider,
		dispatcher: NewActionDispatcher(),
		logger:     logger,
		metrics:    m,
	}
}

// ProcessText applies the resolved rule list to text and returns the
// transformed text plus the audit trail. ruleSetIDs selects which sets
// to apply; empty means the default set. The call itself never fails:
// per-rule problems surface as "error" result entries.
func (e *Engine) ProcessText(ctx context.Context, text string, ruleSetIDs []string) *ProcessResult {
	start := time.Now()

	if text == "" {
		return &ProcessResult{ProcessedText: text, Results: []Result{}, Status: StatusSuccess}
	}

	candidates := e.provider.ResolveRules(ruleSetIDs)

	applicable := candidates[:0:0]
	for _, rule := range candidates {
		if rule.Enabled {
			applicable = append(applicable, rule)
		}
	}

	// Stable: equal priorities keep the resolved (membership) order,
	// which is the documented tie-break.
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority > applicable[j].Priority
	})

	current := text
	results := []Result{}

	for _, rule := range applicable {
		outcome := e.applyRule(rule, current)

		if outcome.Blocked {
			// The block entry replaces everything accumulated so far.
			e.metrics.RecordMatches(rule.ID, string(ResultBlock), 1)
			e.metrics.RecordProcess(string(StatusBlocked), time.Since(start))
			e.logger.Info("text blocked",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
			)
			return &ProcessResult{
				ProcessedText: "",
				Results:       outcome.Results,
				Status:        StatusBlocked,
			}
		}

		for _, res := range outcome.Results {
			if res.Action == ResultError {
				e.metrics.RecordRuleError(rule.ID)
			} else {
				e.metrics.RecordMatches(rule.ID, string(res.Action), 1)
			}
		}
		results = append(results, outcome.Results...)
		current = outcome.Text
	}

	e.metrics.RecordProcess(string(StatusSuccess), time.Since(start))
	e.logger.Debug("text processed",
		"rule_count", len(applicable),
		"result_count", len(results),
	)

	return &ProcessResult{
		ProcessedText: current,
		Results:       results,
		Status:        StatusSuccess,
	}
}

// applyRule evaluates one rule against the current text, converting
// every failure mode (compile drift, dispatcher errors, panics) into an
// "error" result entry with the text unchanged.
func (e *Engine) applyRule(rule *rules.Rule, text string) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule application panicked",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"panic", r,
			)
			outcome = errorOutcome(rule, text, fmt.Sprintf("rule application panicked: %v", r))
		}
	}()

	matcher, err := e.provider.Matcher(rule)
	if err != nil {
		// Stored rules are validated at creation time, so this only
		// happens when a document was edited out-of-band.
		e.logger.Warn("stored rule has invalid condition",
			"rule_id", rule.ID,
			"error", err,
		)
		return errorOutcome(rule, text, err.Error())
	}

	outcome, err = e.dispatcher.Apply(rule, matcher, text)
	if err != nil {
		return errorOutcome(rule, text, err.Error())
	}
	return outcome
}

// errorOutcome builds the non-fatal per-rule failure outcome.
func errorOutcome(rule *rules.Rule, text, msg string) *Outcome {
	return &Outcome{
		Text: text,
		Results: []Result{{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Action:   ResultError,
			Error:    msg,
		}},
	}
}
