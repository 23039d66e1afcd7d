package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "rules.json")
	st := NewFileStore(path)
	ctx := context.Background()

	if _, err := st.Load(ctx); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Load() before save error = %v, want ErrNotExist", err)
	}

	want := []byte(`{"rules":{}}`)
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Load() = %q, want %q", got, want)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	st := NewFileStore(path)
	ctx := context.Background()

	if err := st.Save(ctx, []byte("first")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := st.Save(ctx, []byte("second")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Load() = %q, want %q", got, "second")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(filepath.Join(dir, "rules.json"))

	if err := st.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "rules.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want [rules.json]", names)
	}
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if _, err := st.Load(ctx); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Load() before save error = %v, want ErrNotExist", err)
	}

	payload := []byte("hello")
	if err := st.Save(ctx, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's buffer must not affect the stored copy.
	payload[0] = 'X'

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Load() = %q, want %q", got, "hello")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "rules.db")

	st, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if _, err := st.Load(ctx); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Load() before save error = %v, want ErrNotExist", err)
	}

	if err := st.Save(ctx, []byte("one")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := st.Save(ctx, []byte("two")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Load() = %q, want %q (upsert must replace)", got, "two")
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "rules.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := st.Save(ctx, []byte("persisted")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after reopen error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Load() = %q, want %q", got, "persisted")
	}
}
