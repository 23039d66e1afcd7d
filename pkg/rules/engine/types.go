package engine

// Status is the overall outcome of a process-text call.
type Status string

const (
	// StatusSuccess indicates the fold ran to completion.
	StatusSuccess Status = "success"

	// StatusBlocked indicates a block rule matched and terminated the
	// fold; the processed text is empty.
	StatusBlocked Status = "blocked"
)

// ResultAction identifies what a single result entry records. It covers
// the four rule actions plus "error" for per-rule failures.
type ResultAction string

const (
	ResultRedact    ResultAction = "redact"
	ResultFlag      ResultAction = "flag"
	ResultBlock     ResultAction = "block"
	ResultTransform ResultAction = "transform"
	ResultError     ResultAction = "error"
)

// Result is one audit-trail entry produced while applying a rule. Only
// the fields relevant to the entry's action are populated.
type Result struct {
	// RuleID and RuleName identify the rule that produced this entry.
	RuleID   string       `json:"rule_id"`
	RuleName string       `json:"rule_name"`
	Action   ResultAction `json:"action"`

	// Original is the matched text (redact, transform). When the rule's
	// pattern has capturing groups, it is the first group's text.
	Original string `json:"original,omitempty"`

	// Replacement is the substitution applied by a redact rule.
	Replacement string `json:"replacement,omitempty"`

	// Text is the matched text recorded by a flag rule.
	Text string `json:"text,omitempty"`

	// FlagReason and Severity annotate flag entries; Reason and Severity
	// annotate block entries.
	FlagReason string `json:"flag_reason,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Severity   string `json:"severity,omitempty"`

	// Transformed and TransformType describe a transform entry.
	Transformed   string `json:"transformed,omitempty"`
	TransformType string `json:"transform_type,omitempty"`

	// Error carries the failure message for "error" entries.
	Error string `json:"error,omitempty"`
}

// ProcessResult is the outcome of a process-text call: the transformed
// text and the audit trail of everything that matched.
type ProcessResult struct {
	ProcessedText string   `json:"processed_text"`
	Results       []Result `json:"results"`
	Status        Status   `json:"status"`
}

// RedactionMatch is one redaction recorded by the redact-only
// convenience view of a process result.
type RedactionMatch struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	RuleName    string `json:"rule_name"`
}

// RedactionView is the redact-only projection of a ProcessResult,
// exposed for callers that only care about what was removed.
type RedactionView struct {
	RedactedText string           `json:"redacted_text"`
	Matches      []RedactionMatch `json:"matches"`
}

// Redactions projects a process result down to its redact entries.
func (p *ProcessResult) Redactions() *RedactionView {
	view := &RedactionView{
		RedactedText: p.ProcessedText,
		Matches:      []RedactionMatch{},
	}
	for _, res := range p.Results {
		if res.Action != ResultRedact {
			continue
		}
		view.Matches = append(view.Matches, RedactionMatch{
			Original:    res.Original,
			Replacement: res.Replacement,
			RuleName:    res.RuleName,
		})
	}
	return view
}
