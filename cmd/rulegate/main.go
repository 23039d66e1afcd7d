// Rulegate applies ordered pattern rules to text to redact, flag, block,
// or transform sensitive substrings, returning the modified text plus a
// structured audit trail.
//
// Usage:
//
//	# Serve the rule engine over MCP stdio
//	rulegate serve
//
//	# Process text against the default rule set
//	rulegate process "My SSN is 123-45-6789."
//
//	# Process stdin against specific rule sets
//	cat input.txt | rulegate process --rule-set custom
//
//	# Inspect the configured rules
//	rulegate rules list
//
//	# Show version information
//	rulegate version
package main

func main() {
	Execute()
}
