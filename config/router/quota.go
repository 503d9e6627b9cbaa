package router

import (
	"net/http"
	"strconv"

	"github.com/akeren/waitlist-funnel/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// QuotaMiddleware enforces a per-client-IP fixed-window quota on a single
// route. Unlike the router-wide limiter it reports the remaining quota on
// every response and a retry-after hint in the 429 body.
func (routerService *RouterService) QuotaMiddleware(limiter ratelimit.QuotaLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limit, window := limiter.GetLimitDetails()

		quota, err := limiter.Check(clientIP)
		if err != nil {
			routerService.logger.Error("Quota limiter error", "error", err, "client_ip", clientIP)
			// Fail open on limiter infrastructure errors; the router-wide
			// limiter still applies.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))
		c.Header("X-RateLimit-Window", window.String())

		if !quota.Allowed {
			routerService.logger.Warn("Signup quota exceeded", "client_ip", clientIP)
			c.Header("Retry-After", strconv.Itoa(quota.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(QuotaResponse{
				Limit:             limit,
				Window:            window.String(),
				RetryAfterSeconds: quota.RetryAfterSeconds,
			}).ToJSON())
			return
		}

		c.Next()
	}
}
