package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akeren/waitlist-funnel/pkg/retry"
)

// Logger is the subset of the application logger the queue needs.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Task is a unit of background work. Errors are retried per the queue's
// policy and then dropped with a log line; they never reach a caller.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Config struct {
	Workers    int
	BufferSize int
	// TaskTimeout bounds a single attempt, not the whole retry sequence.
	TaskTimeout time.Duration
	Retry       *retry.Config
}

func DefaultConfig() *Config {
	return &Config{
		Workers:     2,
		BufferSize:  64,
		TaskTimeout: 10 * time.Second,
		Retry:       retry.DefaultConfig(),
	}
}

// Queue runs side-effect work (notifications, outbound email) off the
// request path. Submission is non-blocking: a full buffer drops the task
// rather than stalling a signup.
type Queue struct {
	logger  Logger
	tasks   chan Task
	policy  retry.RetryPolicy
	timeout time.Duration

	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	draining chan struct{}
}

var ErrQueueClosed = errors.New("task queue is closed")

func NewQueue(logger Logger, config *Config) *Queue {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.BufferSize < 1 {
		config.BufferSize = 1
	}

	q := &Queue{
		logger:   logger,
		tasks:    make(chan Task, config.BufferSize),
		policy:   retry.NewExponentialBackoff(config.Retry),
		timeout:  config.TaskTimeout,
		draining: make(chan struct{}),
	}

	for i := 0; i < config.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Submit enqueues a task. It returns an error when the queue is closed or
// the buffer is full; callers treat both as a logged, non-fatal condition.
func (q *Queue) Submit(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	select {
	case q.tasks <- task:
		return nil
	default:
		return errors.New("task queue buffer is full")
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for task := range q.tasks {
		q.execute(task)
	}
}

func (q *Queue) execute(task Task) {
	err := q.policy.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		defer cancel()
		return task.Run(ctx)
	})

	if err != nil {
		q.logger.Error("Background task failed after retries", "task", task.Name, "error", err)
		return
	}
}

// Close stops accepting tasks and waits for in-flight work to drain, up to
// the context deadline.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("Task queue drained")
		return nil
	case <-ctx.Done():
		q.logger.Warn("Task queue drain timed out", "error", ctx.Err())
		return ctx.Err()
	}
}
