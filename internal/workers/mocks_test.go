package workers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
)

type mockGenerator struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, profileID uuid.UUID) (*gifts.GenerationResult, error)
	calls        []uuid.UUID
}

func (m *mockGenerator) GenerateForProfile(ctx context.Context, profileID uuid.UUID) (*gifts.GenerationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, profileID)
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, profileID)
	}
	return &gifts.GenerationResult{ProfileID: profileID, BatchID: uuid.New()}, nil
}

type mockScheduleStore struct {
	dueFunc func(ctx context.Context, limit int) ([]uuid.UUID, error)
}

func (m *mockScheduleStore) Get(ctx context.Context, profileID uuid.UUID) (*models.GenerationScheduleEntry, error) {
	return nil, database.ErrNotFound
}

func (m *mockScheduleStore) Advance(ctx context.Context, profileID uuid.UUID, success bool, interval time.Duration) error {
	return nil
}

func (m *mockScheduleStore) Due(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if m.dueFunc != nil {
		return m.dueFunc(ctx, limit)
	}
	return []uuid.UUID{}, nil
}

type mockSweeper struct {
	runFunc func(ctx context.Context) (*BatchResult, error)
	runs    int
}

func (m *mockSweeper) Run(ctx context.Context) (*BatchResult, error) {
	m.runs++
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return &BatchResult{Errors: []string{}}, nil
}

type mockMessage struct {
	job      *queue.Job
	acked    int
	nacked   int
	requeued bool
}

func (m *mockMessage) Ack() error {
	m.acked++
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked++
	m.requeued = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

type mockJobQueue struct {
	mu          sync.Mutex
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	enqueued    []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	m.enqueued = append(m.enqueued, job)
	m.mu.Unlock()
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *mockJobQueue) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enqueued)
}

var (
	_ ProfileGenerator        = (*mockGenerator)(nil)
	_ database.ScheduleStore  = (*mockScheduleStore)(nil)
	_ Sweeper                 = (*mockSweeper)(nil)
	_ queue.MessageInterface  = (*mockMessage)(nil)
	_ queue.JobQueue          = (*mockJobQueue)(nil)
)

// noWait records requested pauses without sleeping
type noWait struct {
	waits []time.Duration
}

func (n *noWait) wait(ctx context.Context, d time.Duration) error {
	n.waits = append(n.waits, d)
	return ctx.Err()
}
