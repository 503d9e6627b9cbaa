package ratelimit

import (
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

type Logger interface {
	Error(msg string, args ...interface{})
}

// RateLimiter defines the strategy interface for the router-wide limiter.
// It answers a boolean question only; endpoints that must report quota
// details use QuotaLimiter instead.
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(key string) (bool, error)
	Close() error
}

// InMemoryRateLimiter implements token bucket rate limiting for single instances
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	ops      uint64
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*keyedLimiter),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(key string) (bool, error) {
	if key == "" {
		key = "__empty__"
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.limiters[key]
	if !ok {
		rps := float64(r.requests) / r.window.Seconds()
		k = &keyedLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), r.requests),
			lastSeen: now,
		}
		r.limiters[key] = k
	} else {
		k.lastSeen = now
	}

	// Opportunistic cleanup to avoid unbounded growth.
	r.ops++
	if r.ops%1024 == 0 {
		cutoff := now.Add(-2 * r.window)
		for kKey, kVal := range r.limiters {
			if kVal.lastSeen.Before(cutoff) {
				delete(r.limiters, kKey)
			}
		}
	}

	return !k.limiter.Allow(), nil
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Redis    *redis.Client // Optional, if nil uses in-memory
	Logger   Logger        // Optional logger for Redis operations
}

// NewRateLimiter creates the router-wide limiter based on configuration.
// The Redis-backed strategy lives behind the quota limiter; the boolean
// default limiter stays in-memory regardless.
func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}
