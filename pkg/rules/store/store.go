package store

import (
	"context"
	"errors"
)

// ErrNotExist indicates no document has been persisted yet. The
// repository treats it as the first-run signal and bootstraps defaults.
var ErrNotExist = errors.New("rule document does not exist")

// DocumentStore persists the serialized rule configuration as a single
// document. Every save is a full rewrite; there are no partial updates.
type DocumentStore interface {
	// Save atomically replaces the persisted document.
	Save(ctx context.Context, data []byte) error

	// Load returns the persisted document, or ErrNotExist when nothing
	// has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Close releases backend resources.
	Close() error
}
