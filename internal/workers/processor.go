package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
	"go.uber.org/zap"
)

// Sweeper runs one batch over the due profiles
type Sweeper interface {
	Run(ctx context.Context) (*BatchResult, error)
}

var _ Sweeper = (*BatchRunner)(nil)

// JobProcessor handles gift jobs taken off the queue
type JobProcessor struct {
	generator ProfileGenerator
	sweeper   Sweeper
	logger    *zap.Logger
}

// NewJobProcessor creates a job processor
func NewJobProcessor(generator ProfileGenerator, sweeper Sweeper, logger *zap.Logger) *JobProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobProcessor{generator: generator, sweeper: sweeper, logger: logger}
}

// ProcessJob runs a job and settles its message. Generation failures are
// acked: the attempt is already logged and the schedule advanced, so the
// next sweep is the retry. Only jobs that cannot be run at all are
// dead-lettered.
func (p *JobProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if err := job.Validate(); err != nil {
		p.settle(msg, false, job)
		return fmt.Errorf("rejected job %s: %w", job.ID, err)
	}

	var runErr error
	switch job.Type {
	case queue.JobTypeGiftGeneration:
		res, err := p.generator.GenerateForProfile(ctx, *job.ProfileID)
		if err == nil {
			p.logger.Info("gift_generation_job_completed",
				zap.String("job_id", job.ID.String()),
				zap.String("profile_id", job.ProfileID.String()),
				zap.String("generation_batch_id", res.BatchID.String()),
				zap.Int("suggestions_count", len(res.Suggestions)),
			)
		}
		runErr = err

	case queue.JobTypeGiftSweep:
		res, err := p.sweeper.Run(ctx)
		if res != nil {
			p.logger.Info("gift_sweep_job_completed",
				zap.String("job_id", job.ID.String()),
				zap.Int("total", res.Total),
				zap.Int("successful", res.Successful),
				zap.Int("failed", res.Failed),
			)
		}
		runErr = err
	}

	// shutdown mid-job: hand it to another worker
	if errors.Is(runErr, context.Canceled) && ctx.Err() != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			p.logger.Warn("job_requeue_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("%s job %s interrupted: %w", job.Type, job.ID, runErr)
	}

	p.settle(msg, true, job)
	if runErr != nil {
		return fmt.Errorf("%s job %s failed: %w", job.Type, job.ID, runErr)
	}
	return nil
}

func (p *JobProcessor) settle(msg queue.MessageInterface, ack bool, job *queue.Job) {
	var err error
	if ack {
		err = msg.Ack()
	} else {
		err = msg.Nack(false)
	}
	if err != nil {
		p.logger.Warn("job_settle_failed",
			zap.String("job_id", job.ID.String()),
			zap.Bool("ack", ack),
			zap.Error(err),
		)
	}
}

// Consume processes messages until msgs closes or ctx is cancelled
func (p *JobProcessor) Consume(ctx context.Context, msgs <-chan *queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				p.logger.Info("message_channel_closed")
				return
			}
			p.logger.Debug("gift_job_received",
				zap.String("job_id", msg.GetJob().ID.String()),
				zap.String("job_type", string(msg.GetJob().Type)),
				zap.Bool("redelivered", msg.Redelivered),
				zap.Duration("queue_wait", msg.Age(time.Now())),
			)
			if err := p.ProcessJob(ctx, msg); err != nil {
				p.logger.Error("job_processing_failed",
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
					zap.String("error_kind", gifts.ErrorKind(err)),
					zap.Error(err),
				)
			}
		}
	}
}
