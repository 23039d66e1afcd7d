package rules

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the effect a rule has on matching text.
type Action string

const (
	// ActionRedact replaces every match with the rule's replacement text.
	ActionRedact Action = "redact"

	// ActionFlag records matches without modifying the text.
	ActionFlag Action = "flag"

	// ActionBlock rejects the whole text when the pattern matches anywhere.
	ActionBlock Action = "block"

	// ActionTransform rewrites matches in place (e.g. date reformatting).
	ActionTransform Action = "transform"
)

// Known returns true for the four actions the dispatcher implements.
// Unknown actions are accepted into the repository for forward
// compatibility and surface as "error" result entries at processing time.
func (a Action) Known() bool {
	switch a {
	case ActionRedact, ActionFlag, ActionBlock, ActionTransform:
		return true
	}
	return false
}

// Timestamp is a time.Time that serializes as an ISO-8601 string and
// accepts zone-less timestamps written by earlier versions of the
// document format.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// MarshalJSON encodes the timestamp as an RFC 3339 string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON decodes an ISO-8601 string, with or without a zone
// offset. Empty strings decode to the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Rule describes how one pattern of sensitive text is treated.
type Rule struct {
	// ID is the stable unique identifier, assigned by the repository
	// when absent.
	ID string `json:"id"`

	// Name is the human-readable rule name.
	Name string `json:"name"`

	// Description explains what the rule matches.
	Description string `json:"description"`

	// Condition is the regular expression source. It must compile before
	// the rule can enter the repository.
	Condition string `json:"condition"`

	// Action is the effect applied to matches.
	Action Action `json:"action"`

	// Replacement is the substitution text used by redact rules.
	Replacement string `json:"replacement"`

	// Parameters carries action-specific settings, e.g. "reason" and
	// "severity" for block/flag rules or "transform_type" and "format"
	// for transform rules. Kept as an opaque bag for document
	// compatibility.
	Parameters map[string]any `json:"parameters"`

	// Enabled disables the rule without deleting it when false.
	Enabled bool `json:"enabled"`

	// Priority orders evaluation; higher runs first.
	Priority int `json:"priority"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// StringParam returns the named parameter as a string, or fallback when
// the parameter is absent or not a string.
func (r *Rule) StringParam(key, fallback string) string {
	if v, ok := r.Parameters[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	out := *r
	if r.Parameters != nil {
		out.Parameters = make(map[string]any, len(r.Parameters))
		for k, v := range r.Parameters {
			out.Parameters[k] = v
		}
	}
	return &out
}

// RuleSet is a named, ordered collection of rule references.
type RuleSet struct {
	// ID is the stable unique identifier, assigned by the repository
	// when absent.
	ID string `json:"id"`

	// Name is the human-readable set name.
	Name string `json:"name"`

	// Description explains the set's purpose.
	Description string `json:"description"`

	// Rules lists member rule ids in evaluation order. Entries may
	// reference deleted rules; readers filter dangling ids silently.
	Rules []string `json:"rules"`

	// Enabled disables the whole set when false.
	Enabled bool `json:"enabled"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Clone returns a deep copy of the rule set.
func (s *RuleSet) Clone() *RuleSet {
	if s == nil {
		return nil
	}
	out := *s
	out.Rules = append([]string(nil), s.Rules...)
	return &out
}

// Document is the unit of persistence: the complete rule configuration
// serialized as a single JSON document.
type Document struct {
	// Rules maps rule id to rule.
	Rules map[string]*Rule `json:"rules"`

	// RuleSets maps rule set id to rule set.
	RuleSets map[string]*RuleSet `json:"rule_sets"`

	// DefaultRuleSet names the set applied when a caller specifies none.
	DefaultRuleSet string `json:"default_rule_set"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Rules:          make(map[string]*Rule, len(d.Rules)),
		RuleSets:       make(map[string]*RuleSet, len(d.RuleSets)),
		DefaultRuleSet: d.DefaultRuleSet,
	}
	for id, r := range d.Rules {
		out.Rules[id] = r.Clone()
	}
	for id, s := range d.RuleSets {
		out.RuleSets[id] = s.Clone()
	}
	return out
}
