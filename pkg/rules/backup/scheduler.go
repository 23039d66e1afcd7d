package backup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs document snapshots on a cron schedule.
type Scheduler struct {
	snapshotter *Snapshotter
	schedule    string
	cron        *cron.Cron
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler running the snapshotter on the given
// standard cron expression (e.g. "0 3 * * *" for daily at 3 AM).
func NewScheduler(snapshotter *Snapshotter, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		snapshotter: snapshotter,
		schedule:    schedule,
		cron:        cron.New(),
		logger:      logger,
	}
}

// Start begins scheduled snapshots. It returns immediately; the
// scheduler stops when the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("backup scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.snapshotter.Snapshot(); err != nil {
			s.logger.Error("scheduled backup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule backups: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("backup scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("backup scheduler stopped")
}
