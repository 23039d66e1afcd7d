package pattern

import (
	"fmt"
	"regexp"
	"sync"
)

// InvalidPatternError indicates a rule condition that does not compile as
// a regular expression. It is returned before the rule is stored, so the
// repository never contains an uncompilable condition.
type InvalidPatternError struct {
	// Condition is the pattern source that failed to compile.
	Condition string

	// Cause is the underlying regexp compilation error.
	Cause error
}

// Error returns the error message.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Condition, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InvalidPatternError) Unwrap() error {
	return e.Cause
}

// Compile validates and compiles a rule condition into a matcher.
func Compile(condition string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(condition)
	if err != nil {
		return nil, &InvalidPatternError{Condition: condition, Cause: err}
	}
	return re, nil
}

// Cache caches compiled matchers keyed by rule id. A cached entry is only
// reused while the rule's condition string is unchanged, so a stale entry
// can never outlive a condition update.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	condition string
	matcher   *regexp.Regexp
}

// NewCache creates an empty matcher cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the compiled matcher for the given rule id and condition,
// compiling and caching it on first use or after a condition change.
func (c *Cache) Get(ruleID, condition string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[ruleID]; ok && entry.condition == condition {
		return entry.matcher, nil
	}

	re, err := Compile(condition)
	if err != nil {
		return nil, err
	}

	c.entries[ruleID] = &cacheEntry{condition: condition, matcher: re}
	return re, nil
}

// Invalidate drops the cached matcher for a rule. Safe to call for rules
// that were never cached.
func (c *Cache) Invalidate(ruleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ruleID)
}

// Reset drops every cached matcher.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len returns the number of cached matchers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
