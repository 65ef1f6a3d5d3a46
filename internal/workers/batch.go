package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/metrics"
	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
	"go.uber.org/zap"
)

const (
	// DefaultBatchDelay is the pause between profiles in a batch
	DefaultBatchDelay = time.Second
	// DefaultBatchLimit caps how many due profiles one batch picks up
	DefaultBatchLimit = 100
)

// ProfileGenerator runs the pipeline for one profile
type ProfileGenerator interface {
	GenerateForProfile(ctx context.Context, profileID uuid.UUID) (*gifts.GenerationResult, error)
}

var _ ProfileGenerator = (*gifts.Generator)(nil)

// BatchResult summarizes one batch run
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
	DurationMS int64    `json:"duration_ms"`
}

// BatchRunner generates suggestions for every due profile, one at a time
type BatchRunner struct {
	generator ProfileGenerator
	schedule  database.ScheduleStore
	delay     time.Duration
	limit     int
	logger    *zap.Logger
	// wait is swapped in tests
	wait func(ctx context.Context, d time.Duration) error
}

// NewBatchRunner creates a batch runner. A negative delay or a non-positive
// limit takes the default; a zero delay disables the pause.
func NewBatchRunner(generator ProfileGenerator, schedule database.ScheduleStore, delay time.Duration, limit int, logger *zap.Logger) *BatchRunner {
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		generator: generator,
		schedule:  schedule,
		delay:     delay,
		limit:     limit,
		logger:    logger,
		wait:      sleepContext,
	}
}

// Run processes due profiles sequentially with a pause between them. A
// failing profile is recorded as "<id>: <message>" and the loop moves on.
// Only a failure to list due profiles, or cancellation, ends the batch
// early; the partial result is returned either way.
func (b *BatchRunner) Run(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{Errors: []string{}}

	due, err := b.schedule.Due(ctx, b.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due profiles: %w", err)
	}
	result.Total = len(due)

	b.logger.Info("gift_batch_started", zap.Int("due_profiles", len(due)))

	var runErr error
	for i, profileID := range due {
		if i > 0 && b.delay > 0 {
			if err := b.wait(ctx, b.delay); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if _, err := b.generator.GenerateForProfile(ctx, profileID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", profileID, logger.SanitizeError(err)))
			b.logger.Warn("gift_batch_profile_failed",
				zap.String("profile_id", profileID.String()),
				zap.String("error_kind", gifts.ErrorKind(err)),
				zap.Error(err),
			)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				runErr = err
				break
			}
			continue
		}
		result.Successful++
	}

	result.DurationMS = time.Since(start).Milliseconds()
	metrics.ObserveBatch(result.Successful, result.Failed)

	b.logger.Info("gift_batch_finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int64("duration_ms", result.DurationMS),
		zap.Bool("interrupted", runErr != nil),
	)
	return result, runErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
