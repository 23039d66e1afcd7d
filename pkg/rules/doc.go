// Package rules defines the rule data model and the repository that owns
// the persisted rule configuration.
//
// A Rule pairs a regular-expression condition with an action (redact,
// flag, block, transform) and action-specific parameters. RuleSets group
// rules into named, ordered collections; one rule set is designated the
// default and is applied when a caller does not name any set. The whole
// configuration (rules, rule sets, and the default-set designation) is
// a single Document persisted as one JSON file (or equivalent backend),
// rewritten in full after every mutation.
//
// The Repository serializes reads and mutations behind a RWMutex so the
// engine can safely run against concurrent transports. On first run, or
// when the backing document is missing or corrupt, the repository
// bootstraps a built-in default rule set covering common sensitive
// patterns (SSNs, credit cards, emails, credentials, ...) and persists it.
package rules
