// Package engine evaluates ordered rule lists against input text.
//
// ProcessText is a left fold over the applicable rules: the candidate
// list is resolved from the requested rule sets (or the default set),
// filtered to enabled rules, and stably sorted by priority descending.
// Each rule then sees the text as left by the rules before it, so a
// higher-priority rule's edits are visible to lower-priority rules and
// win any contested spans against them.
//
// A matching block rule short-circuits the whole fold: the result is an
// empty text, a single block entry, and the "blocked" status, discarding
// anything earlier rules accumulated. Every other failure mode is
// isolated per rule: unsupported actions and runtime errors become
// "error" result entries and the fold continues with the text unchanged.
package engine
