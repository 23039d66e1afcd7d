// Package pattern compiles rule conditions into reusable regular
// expression matchers.
//
// Conditions are validated at rule-creation time so that a pattern that
// does not compile can never enter the repository. A Cache keyed by rule
// id and condition string avoids recompiling matchers on every
// text-processing call; entries are invalidated when a rule's condition
// changes or the rule is deleted.
package pattern
