package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/pkg/retry"
)

func testQueue(t *testing.T, cfg *Config) *Queue {
	t.Helper()
	q := NewQueue(log.NewLoggerWithJSONOutput(), cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		q.Close(ctx)
	})
	return q
}

func TestQueue_RunsSubmittedTask(t *testing.T) {
	q := testQueue(t, nil)

	done := make(chan struct{})
	err := q.Submit(Task{Name: "test", Run: func(ctx context.Context) error {
		close(done)
		return nil
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task was not executed")
	}
}

func TestQueue_RetriesRetryableFailures(t *testing.T) {
	q := testQueue(t, &Config{
		Workers:     1,
		BufferSize:  4,
		TaskTimeout: time.Second,
		Retry: &retry.Config{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    10 * time.Millisecond,
			Multiplier:  2.0,
		},
	})

	var attempts atomic.Int32
	done := make(chan struct{})
	q.Submit(Task{Name: "flaky", Run: func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("connection refused")
		}
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task did not succeed after retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestQueue_SubmitAfterCloseFails(t *testing.T) {
	q := NewQueue(log.NewLoggerWithJSONOutput(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := q.Submit(Task{Name: "late", Run: func(ctx context.Context) error { return nil }}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}
