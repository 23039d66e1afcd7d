package rules

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrRuleNotFound indicates the referenced rule id does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleSetNotFound indicates the referenced rule set id does not exist.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrCannotDeleteDefault indicates an attempt to delete the default
	// rule set, which is always refused.
	ErrCannotDeleteDefault = errors.New("cannot delete the default rule set")
)

// PersistenceError indicates a save or load failure against the backing
// document. On save, the in-memory mutation has already been applied and
// is not rolled back; the error is a warning that memory and disk are
// out of sync.
type PersistenceError struct {
	// Op is the failing operation ("save" or "load").
	Op string

	// Cause is the underlying storage error.
	Cause error
}

// Error returns the error message.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("rules %s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
