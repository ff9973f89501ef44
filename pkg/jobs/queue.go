package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the buffer has no room left.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueClosed is returned for jobs offered before Start or after Stop.
	ErrQueueClosed = errors.New("queue closed")
)

// Job represents a queued background task.
type Job struct {
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-memory job dispatcher backed by goroutines. Enqueue never
// blocks, and Stop drains whatever is already buffered before returning.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, waits for buffered ones to finish and releases the workers.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.closed {
		q.closed = true
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue offers a job without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started || q.closed {
		return ErrQueueClosed
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(job)
	}
}

func (q *Queue) run(job Job) {
	for {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		if job.Attempt >= q.cfg.MaxRetries {
			q.logger.Error("job failed", zap.String("queue", q.name), zap.String("type", job.Type), zap.Int("attempts", job.Attempt+1), zap.Error(err))
			return
		}
		job.Attempt++
		q.logger.Warn("job failed, retrying", zap.String("queue", q.name), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))

		timer := time.NewTimer(q.cfg.RetryDelay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
