package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when enqueueing before Start or after Stop.
	ErrNotStarted = errors.New("queue not started")
	// ErrFull is returned by TryEnqueue when the buffer has no room.
	ErrFull = errors.New("queue full")
)

// Job is a unit of background work carrying a typed payload.
type Job[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler[T any] func(context.Context, Job[T]) error

// Config configures the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue dispatches jobs to a fixed pool of goroutines with delayed retries.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config

	jobs     chan Job[T]
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool
}

// New builds a queue. Zero config values fall back to one worker, a buffer
// of four jobs per worker, three retries and a one second retry delay.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		jobs:    make(chan Job[T], cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.stopping = make(chan struct{})
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.running = true
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop rejects new jobs, lets the workers finish everything already
// buffered and then cancels the handler context. Retries still waiting on
// their delay are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopping)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name), zap.Int("dropped", len(q.jobs)))
}

// Enqueue blocks until the job is buffered, the queue stops or ctx ends.
func (q *Queue[T]) Enqueue(ctx context.Context, job Job[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if err := q.accept(&job); err != nil {
		return err
	}
	select {
	case q.jobs <- job:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue %s: %w", q.name, ErrNotStarted)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue buffers the job without blocking.
func (q *Queue[T]) TryEnqueue(job Job[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if err := q.accept(&job); err != nil {
		return err
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrFull)
	}
}

// Pending returns the number of buffered jobs.
func (q *Queue[T]) Pending() int {
	return len(q.jobs)
}

// accept must be called with q.mu held.
func (q *Queue[T]) accept(job *Job[T]) error {
	if !q.running {
		return fmt.Errorf("queue %s: %w", q.name, ErrNotStarted)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	return nil
}

func (q *Queue[T]) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.process(job)
		case <-q.stopping:
			q.drain()
			return
		}
	}
}

func (q *Queue[T]) drain() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.process(job)
		default:
			return
		}
	}
}

func (q *Queue[T]) process(job Job[T]) {
	if err := q.handler(q.ctx, job); err != nil {
		q.retry(job, err)
	}
}

func (q *Queue[T]) retry(job Job[T], err error) {
	job.Attempt++
	log := q.cfg.Logger.With(
		zap.String("queue", q.name),
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempt),
		zap.Error(err),
	)
	if job.Attempt > q.cfg.MaxRetries {
		log.Error("job exceeded retries")
		return
	}
	log.Warn("job failed, retrying")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(q.cfg.RetryDelay * time.Duration(job.Attempt))
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-q.stopping:
			log.Warn("retry dropped on shutdown")
		case <-timer.C:
			if err := q.TryEnqueue(job); err != nil {
				log.Error("failed to requeue job", zap.NamedError("requeue_error", err))
			}
		}
	}()
}
