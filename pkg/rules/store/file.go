package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the document as a single JSON file on disk.
// Writes go through a temp file in the same directory followed by a
// rename, so readers never observe a half-written document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path. Parent
// directories are created on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save atomically replaces the persisted document.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %q: %w", s.path, err)
	}

	return nil
}

// Load returns the persisted document, or ErrNotExist when the file is
// missing.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
	}
	return data, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
