package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"go.uber.org/zap"
)

// SweepScheduler enqueues a sweep job on a fixed interval. Any number of
// workers can consume the jobs; only one scheduler should run.
type SweepScheduler struct {
	jobQueue queue.JobQueue
	interval time.Duration
	logger   *zap.Logger
}

// NewSweepScheduler creates a sweep scheduler
func NewSweepScheduler(jobQueue queue.JobQueue, interval time.Duration, logger *zap.Logger) *SweepScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepScheduler{jobQueue: jobQueue, interval: interval, logger: logger}
}

// ScheduleSweep enqueues one sweep job. It expires after one interval so a
// backlog never runs stale sweeps back to back.
func (s *SweepScheduler) ScheduleSweep(ctx context.Context) error {
	job := queue.NewSweepJob(s.interval)
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue sweep job: %w", err)
	}
	s.logger.Info("gift_sweep_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Time("not_after", *job.NotAfter),
	)
	return nil
}

// Start schedules a sweep immediately and then on every tick until ctx ends
func (s *SweepScheduler) Start(ctx context.Context) error {
	if err := s.ScheduleSweep(ctx); err != nil {
		s.logger.Warn("gift_sweep_schedule_failed", zap.Error(err))
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.ScheduleSweep(ctx); err != nil {
				s.logger.Warn("gift_sweep_schedule_failed", zap.Error(err))
			}
		}
	}
}
