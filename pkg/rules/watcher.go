package rules

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher reloads the repository when the backing document
// changes on disk, covering out-of-band edits (operators modifying the
// JSON file directly). Change bursts are debounced so one editor save
// triggers one reload.
type DocumentWatcher struct {
	repo     *Repository
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	timer   *time.Timer
}

// NewDocumentWatcher creates a watcher for the document at path.
func NewDocumentWatcher(repo *Repository, path string, debounce time.Duration, logger *slog.Logger) *DocumentWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &DocumentWatcher{
		repo:     repo,
		path:     path,
		debounce: debounce,
		logger:   logger,
	}
}

// Watch blocks, reloading the repository after each settled change to
// the backing document, until the context is cancelled. The parent
// directory is watched rather than the file itself so atomic
// rename-replace writes are observed.
func (w *DocumentWatcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("document watcher started",
		"path", w.path,
		"debounce", w.debounce,
	)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("document watcher error", "error", err)
		}
	}
}

// scheduleReload (re)arms the debounce timer.
func (w *DocumentWatcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("document changed on disk, reloading")
		if err := w.repo.Reload(ctx); err != nil {
			w.logger.Error("failed to reload document after change", "error", err)
		}
	})
}
