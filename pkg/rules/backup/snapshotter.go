package backup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Snapshotter copies the rule document into a backups directory and
// prunes old snapshots.
type Snapshotter struct {
	// source is the document path to snapshot.
	source string

	// dir is the directory snapshots are written to.
	dir string

	// keep is the number of snapshots retained.
	keep int

	logger *slog.Logger
}

// NewSnapshotter creates a snapshotter for the document at source.
func NewSnapshotter(source, dir string, keep int, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	if keep < 1 {
		keep = 1
	}
	return &Snapshotter{
		source: source,
		dir:    dir,
		keep:   keep,
		logger: logger,
	}
}

// snapshotTimeLayout orders snapshot filenames lexically by creation
// time.
const snapshotTimeLayout = "20060102-150405"

// Snapshot copies the current document into the backups directory and
// prunes snapshots beyond the keep count. A missing source document is
// not an error; there is simply nothing to back up yet.
func (s *Snapshotter) Snapshot() (string, error) {
	data, err := os.ReadFile(s.source)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no document to back up", "path", s.source)
			return "", nil
		}
		return "", fmt.Errorf("failed to read document %q: %w", s.source, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %q: %w", s.dir, err)
	}

	name := fmt.Sprintf("%s.%s.bak", filepath.Base(s.source), time.Now().UTC().Format(snapshotTimeLayout))
	dest := filepath.Join(s.dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup %q: %w", dest, err)
	}

	pruned, err := s.prune()
	if err != nil {
		s.logger.Warn("backup written but pruning failed", "error", err)
	}

	s.logger.Info("document backed up",
		"dest", dest,
		"pruned", pruned,
	)
	return dest, nil
}

// prune removes the oldest snapshots beyond the keep count and returns
// how many were deleted.
func (s *Snapshotter) prune() (int, error) {
	pattern := filepath.Join(s.dir, filepath.Base(s.source)+".*.bak")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to list backups: %w", err)
	}

	if len(matches) <= s.keep {
		return 0, nil
	}

	// Timestamped names sort oldest-first.
	sort.Strings(matches)

	pruned := 0
	for _, old := range matches[:len(matches)-s.keep] {
		if err := os.Remove(old); err != nil {
			s.logger.Warn("failed to remove old backup", "path", old, "error", err)
			continue
		}
		pruned++
	}
	return pruned, nil
}
