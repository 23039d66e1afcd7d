package backup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshotCopiesDocument(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(source, []byte(`{"rules":{}}`), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	backups := filepath.Join(dir, "backups")
	s := NewSnapshotter(source, backups, 5, testLogger())

	dest, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dest == "" {
		t.Fatal("Snapshot() returned empty destination")
	}
	if !strings.HasPrefix(filepath.Base(dest), "rules.json.") || !strings.HasSuffix(dest, ".bak") {
		t.Errorf("unexpected backup name %q", dest)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != `{"rules":{}}` {
		t.Errorf("backup contents = %q", data)
	}
}

func TestSnapshotMissingSource(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(filepath.Join(dir, "absent.json"), filepath.Join(dir, "backups"), 5, testLogger())

	dest, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if dest != "" {
		t.Errorf("Snapshot() = %q, want empty for missing source", dest)
	}
}

func TestSnapshotPrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(source, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	backups := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backups, 0o755); err != nil {
		t.Fatalf("create backup dir: %v", err)
	}
	// Seed stale snapshots with lexically older timestamps.
	for _, stamp := range []string{"20240101-000001", "20240101-000002", "20240101-000003"} {
		name := filepath.Join(backups, "rules.json."+stamp+".bak")
		if err := os.WriteFile(name, []byte("old"), 0o644); err != nil {
			t.Fatalf("seed backup: %v", err)
		}
	}

	s := NewSnapshotter(source, backups, 2, testLogger())
	if _, err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(backups, "rules.json.*.bak"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("backup count after prune = %d, want 2", len(matches))
	}
	// The oldest snapshots are the ones removed.
	for _, m := range matches {
		if strings.Contains(m, "20240101-000001") || strings.Contains(m, "20240101-000002") {
			t.Errorf("stale backup %q survived pruning", m)
		}
	}
}
