package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Quota is the outcome of a fixed-window check.
type Quota struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
}

// QuotaLimiter is the strategy interface for endpoints that must report the
// remaining quota and a retry-after hint, such as the signup route.
type QuotaLimiter interface {
	GetLimitDetails() (int, time.Duration)
	Check(key string) (Quota, error)
	Close() error
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key inside a fixed window. State is
// process-local; a restart resets all windows. Expired windows are swept
// lazily on a fraction of calls so no background timer is needed.
type FixedWindowLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	windows map[string]*fixedWindow
	ops     uint64
}

func NewFixedWindowLimiter(requests int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		requests: requests,
		window:   window,
		windows:  make(map[string]*fixedWindow),
	}
}

func (l *FixedWindowLimiter) GetLimitDetails() (int, time.Duration) {
	return l.requests, l.window
}

func (l *FixedWindowLimiter) Check(key string) (Quota, error) {
	// Requests without a resolvable client IP share one synthetic bucket.
	if key == "" {
		key = "__empty__"
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ops++
	if l.ops%64 == 0 {
		for k, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &fixedWindow{count: 1, resetAt: now.Add(l.window)}
		return Quota{Allowed: true, Remaining: l.requests - 1}, nil
	}

	w.count++
	if w.count > l.requests {
		retryAfter := int(math.Ceil(time.Until(w.resetAt).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Quota{Allowed: false, Remaining: 0, RetryAfterSeconds: retryAfter}, nil
	}

	return Quota{Allowed: true, Remaining: l.requests - w.count}, nil
}

func (l *FixedWindowLimiter) Close() error {
	return nil
}

// RedisQuotaLimiter implements the fixed-window check against a shared Redis
// so multiple instances enforce one quota.
type RedisQuotaLimiter struct {
	client    *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
}

func NewRedisQuotaLimiter(client *redis.Client, requests int, window time.Duration, logger Logger) *RedisQuotaLimiter {
	return &RedisQuotaLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: "quota:",
		logger:    logger,
	}
}

func (l *RedisQuotaLimiter) GetLimitDetails() (int, time.Duration) {
	return l.requests, l.window
}

// Atomic fixed-window counter: INCR the key, start the window TTL on first
// increment, and report the remaining TTL when the cap is exceeded.
const quotaScript = `
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local windowMs = tonumber(ARGV[2])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, windowMs)
	end

	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, windowMs)
		ttl = windowMs
	end

	return {count, ttl}
`

func (l *RedisQuotaLimiter) Check(key string) (Quota, error) {
	if key == "" {
		key = "__empty__"
	}

	fullKey := key
	if !strings.HasPrefix(key, l.keyPrefix) {
		fullKey = l.keyPrefix + key
	}

	result, err := l.client.Eval(context.Background(), quotaScript, []string{fullKey},
		l.requests, l.window.Milliseconds()).Result()
	if err != nil {
		if l.logger != nil {
			l.logger.Error("Redis quota script execution failed", "key", fullKey, "error", err)
		}
		return Quota{}, fmt.Errorf("quota limiter Redis error: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return Quota{}, fmt.Errorf("quota limiter Redis error: unexpected reply %v", result)
	}

	count := int(values[0].(int64))
	ttlMs := values[1].(int64)

	if count > l.requests {
		retryAfter := int(math.Ceil(float64(ttlMs) / 1000))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Quota{Allowed: false, Remaining: 0, RetryAfterSeconds: retryAfter}, nil
	}

	return Quota{Allowed: true, Remaining: l.requests - count}, nil
}

// The Redis client is owned by the ApplicationConfig and closed there
func (l *RedisQuotaLimiter) Close() error {
	return nil
}

// QuotaConfig holds configuration for a quota limiter.
type QuotaConfig struct {
	Requests int
	Window   time.Duration
	Redis    *redis.Client // Optional, if nil uses in-memory
	Logger   Logger
}

// NewQuotaLimiter creates a quota limiter based on configuration.
func NewQuotaLimiter(config *QuotaConfig) QuotaLimiter {
	if config.Redis != nil {
		return NewRedisQuotaLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	}
	return NewFixedWindowLimiter(config.Requests, config.Window)
}
