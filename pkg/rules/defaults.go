package rules

import "github.com/google/uuid"

// DefaultRuleSetID is the id of the bootstrapped default rule set.
const DefaultRuleSetID = "default"

// DefaultReplacement is the replacement text applied when a redact rule
// does not specify one.
const DefaultReplacement = "<REDACTED>"

// DefaultDocument builds the bootstrap configuration: a default rule set
// containing the built-in sensitive-text rules. Rule ids are freshly
// assigned; the set id is fixed so the document stays addressable across
// bootstraps.
func DefaultDocument() *Document {
	now := Now()

	seed := []*Rule{
		{
			Name:        "SSN",
			Description: "US Social Security Number",
			Condition:   `\b\d{3}-\d{2}-\d{4}\b`,
			Action:      ActionRedact,
			Replacement: "<SSN>",
			Priority:    100,
		},
		{
			Name:        "Credit Card",
			Description: "Credit Card Number",
			Condition:   `\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`,
			Action:      ActionRedact,
			Replacement: "<CREDIT_CARD>",
			Priority:    90,
		},
		{
			Name:        "Email",
			Description: "Email Address",
			Condition:   `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
			Action:      ActionRedact,
			Replacement: "<EMAIL>",
			Priority:    80,
		},
		{
			Name:        "Phone",
			Description: "Phone Number",
			Condition:   `\b(?:\+\d{1,2}\s)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`,
			Action:      ActionRedact,
			Replacement: "<PHONE>",
			Priority:    70,
		},
		{
			Name:        "Credentials",
			Description: "API Keys, Passwords, etc.",
			Condition:   `(password|api[_-]?key|access[_-]?token|secret)[=:]\s*\S+`,
			Action:      ActionRedact,
			Replacement: "<CREDENTIAL>",
			Priority:    60,
		},
		{
			Name:        "IP Address",
			Description: "IPv4 Address",
			Condition:   `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
			Action:      ActionRedact,
			Replacement: "<IP_ADDRESS>",
			Priority:    50,
		},
		{
			Name:        "URL",
			Description: "Web URL",
			Condition:   `https?://(?:www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_\+.~#?&/=]*)`,
			Action:      ActionFlag,
			Replacement: "<URL>",
			Parameters:  map[string]any{"flag_reason": "Contains URL", "severity": "info"},
			Priority:    40,
		},
		{
			Name:        "Profanity Block",
			Description: "Block text with strong profanity",
			Condition:   `\b(f\*\*k|sh\*t)\b`,
			Action:      ActionBlock,
			Parameters:  map[string]any{"reason": "Contains strong profanity", "severity": "high"},
			// Blocks must run before redaction removes the evidence.
			Priority: 200,
		},
		{
			Name:        "Date Transform",
			Description: "Transform dates to standard format",
			Condition:   `\b(0?[1-9]|1[0-2])/(0?[1-9]|[12][0-9]|3[01])/(19|20)\d{2}\b`,
			Action:      ActionTransform,
			Parameters:  map[string]any{"transform_type": "date", "format": "%Y-%m-%d"},
			Priority:    30,
		},
	}

	doc := &Document{
		Rules:          make(map[string]*Rule, len(seed)),
		RuleSets:       make(map[string]*RuleSet, 1),
		DefaultRuleSet: DefaultRuleSetID,
	}

	memberIDs := make([]string, 0, len(seed))
	for _, r := range seed {
		r.ID = uuid.NewString()
		r.Enabled = true
		if r.Replacement == "" {
			r.Replacement = DefaultReplacement
		}
		if r.Parameters == nil {
			r.Parameters = map[string]any{}
		}
		r.CreatedAt = now
		r.UpdatedAt = now
		doc.Rules[r.ID] = r
		memberIDs = append(memberIDs, r.ID)
	}

	doc.RuleSets[DefaultRuleSetID] = &RuleSet{
		ID:          DefaultRuleSetID,
		Name:        "Default",
		Description: "Default rule set with common patterns",
		Rules:       memberIDs,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return doc
}
