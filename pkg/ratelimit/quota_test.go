package ratelimit

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter_AllowsUpToCap(t *testing.T) {
	limiter := NewFixedWindowLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		q, err := limiter.Check("203.0.113.7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !q.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if q.Remaining != 5-(i+1) {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, 5-(i+1), q.Remaining)
		}
	}

	q, err := limiter.Check("203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Allowed {
		t.Fatalf("sixth request should be denied")
	}
	if q.RetryAfterSeconds < 1 {
		t.Fatalf("expected positive retry-after, got %d", q.RetryAfterSeconds)
	}
}

func TestFixedWindowLimiter_IsPerKey(t *testing.T) {
	limiter := NewFixedWindowLimiter(1, time.Hour)

	q, _ := limiter.Check("client-a")
	if !q.Allowed {
		t.Fatalf("first request for client-a should be allowed")
	}

	q, _ = limiter.Check("client-a")
	if q.Allowed {
		t.Fatalf("second request for client-a should be denied")
	}

	q, _ = limiter.Check("client-b")
	if !q.Allowed {
		t.Fatalf("first request for client-b should be allowed (per-key limiter)")
	}
}

func TestFixedWindowLimiter_ExpiredWindowResets(t *testing.T) {
	limiter := NewFixedWindowLimiter(1, 10*time.Millisecond)

	if q, _ := limiter.Check("client-a"); !q.Allowed {
		t.Fatalf("first request should be allowed")
	}
	if q, _ := limiter.Check("client-a"); q.Allowed {
		t.Fatalf("second request inside the window should be denied")
	}

	time.Sleep(15 * time.Millisecond)

	q, _ := limiter.Check("client-a")
	if !q.Allowed {
		t.Fatalf("request after window expiry should start a fresh window")
	}
	if q.Remaining != 0 {
		t.Fatalf("fresh window with cap 1 should report 0 remaining, got %d", q.Remaining)
	}
}

func TestFixedWindowLimiter_EmptyKeySharesSyntheticBucket(t *testing.T) {
	limiter := NewFixedWindowLimiter(1, time.Hour)

	if q, _ := limiter.Check(""); !q.Allowed {
		t.Fatalf("first request without a key should be allowed")
	}
	if q, _ := limiter.Check(""); q.Allowed {
		t.Fatalf("second request without a key should share the synthetic bucket and be denied")
	}
}

func TestFixedWindowLimiter_SweepsExpiredWindows(t *testing.T) {
	limiter := NewFixedWindowLimiter(5, time.Millisecond)

	for i := 0; i < 100; i++ {
		limiter.Check("sweep-key")
		time.Sleep(time.Millisecond / 10)
	}

	limiter.mu.Lock()
	size := len(limiter.windows)
	limiter.mu.Unlock()

	if size > 10 {
		t.Fatalf("expected lazy sweep to bound the map, got %d entries", size)
	}
}
