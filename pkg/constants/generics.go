package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Router-wide rate limiting defaults
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
)

// Signup quota defaults: 5 signups per client IP per hour.
const (
	DefaultSignupQuotaRequests    = 5
	DefaultSignupQuotaWindowHours = 1
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// DefaultSignupQuotaWindow returns the default signup quota window duration
func DefaultSignupQuotaWindow() time.Duration {
	return time.Duration(DefaultSignupQuotaWindowHours) * time.Hour
}

// DefaultConfirmationTTL is how long a confirmation token stays valid.
const DefaultConfirmationTTL = 24 * time.Hour
