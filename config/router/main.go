package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/waitlist-funnel/internal/log"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/akeren/waitlist-funnel/pkg/ratelimit"
	"github.com/akeren/waitlist-funnel/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	// DefaultTimeoutDuration is the default request timeout
	DefaultTimeoutDuration = 30 * time.Second
)

type MiddlewareConfig struct {
	TimeoutDuration time.Duration
}

type RouterService struct {
	engine           *gin.Engine
	server           *http.Server
	logger           *log.Logger
	rateLimiter      ratelimit.RateLimiter
	middlewareConfig *MiddlewareConfig
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func CreateRouterService(logger *log.Logger, routerConfig *RouterConfig) *RouterService {
	if mode, ok := os.LookupEnv("GIN_MODE"); ok && mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		serviceName := utils.OTelServiceName()
		ginRouter.Use(otelgin.Middleware(serviceName))
		logger.Info("Tracing middleware enabled")
	}

	// SECURITY: Gin trusts all proxies by default, which makes ClientIP() depend
	// on potentially spoofed X-Forwarded-For headers. Disable trust by default
	// and require explicit configuration via TRUSTED_PROXIES. The signup quota
	// keys on ClientIP(), so a spoofable IP would void the abuse throttle.
	trustedProxies := parseTrustedProxiesEnv(os.Getenv("TRUSTED_PROXIES"))
	if err := ginRouter.SetTrustedProxies(trustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = ginRouter.SetTrustedProxies(nil)
	} else if trustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	rs := &RouterService{
		engine:           ginRouter,
		logger:           logger,
		rateLimiter:      ratelimit.NewInMemoryRateLimiter(routerConfig.RateLimitRequests, routerConfig.RateLimitWindow),
		middlewareConfig: &MiddlewareConfig{TimeoutDuration: routerConfig.RequestTimeout},
	}

	// Observability (opt-out): /metrics
	rs.mountMetrics()

	ginRouter.Use(rs.securityHeadersMiddleware())
	ginRouter.Use(rs.maxBodySizeMiddleware())
	ginRouter.Use(rs.corsMiddleware())
	ginRouter.Use(rs.rateLimitMiddleware())
	ginRouter.Use(rs.timeoutMiddleware())

	ginRouter.Use(rs.correlationIDMiddleware())
	ginRouter.Use(rs.loggerInjectionMiddleware())
	ginRouter.Use(rs.requestLoggingMiddleware())

	ginRouter.HandleMethodNotAllowed = true
	ginRouter.RedirectTrailingSlash = true

	ginRouter.NoRoute(func(c *gin.Context) {
		correlatedLogger := logger.WithCorrelationID(c.Request.Context())
		correlatedLogger.Error("Route not found")
		c.JSON(http.StatusNotFound, gin.H{
			"code":    apperrors.StatusNotFound,
			"message": "Route not found",
			"data":    nil,
		})
	})

	ginRouter.NoMethod(func(c *gin.Context) {
		correlatedLogger := logger.WithCorrelationID(c.Request.Context())
		correlatedLogger.Error("Method not allowed")
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"code":    apperrors.StatusMethodNotAllowed,
			"message": "Method not allowed",
			"data":    nil,
		})
	})

	rs.server = &http.Server{
		Addr:    ":8080", // Default, will be overridden in RunHTTPServer
		Handler: ginRouter,

		// Server-side timeouts are the safe way to enforce request time limits.
		// Gin's Context is not goroutine-safe, so we avoid running handlers in
		// a separate goroutine to implement timeouts.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func parseTrustedProxiesEnv(v string) []string {
	s := strings.TrimSpace(v)
	if s == "" {
		// Disable trusted proxies: ClientIP() will use RemoteAddr.
		return nil
	}
	if s == "*" {
		// Explicit escape hatch for local/dev.
		return []string{"0.0.0.0/0", "::/0"}
	}
	parts := strings.Split(s, ",")
	proxies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) Cleanup() {
	if routerService.rateLimiter != nil {
		if err := routerService.rateLimiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	routerService.logger.Info("Mounting controller",
		"name", controller.name,
		"path", controller.mountPoint,
	)

	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	appPort, ok := os.LookupEnv("APP_PORT")
	if !ok || appPort == "" {
		appPort = "8080"
	}
	addr := ":" + appPort

	routerService.server.Addr = addr

	routerService.logger.Info("Starting HTTP server", "addr", addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

// Middleware methods
func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Correlation-ID")
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		ctx := context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-ID", id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		ctx := context.WithValue(c.Request.Context(), log.LoggerKeyForContext, correlatedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		correlatedLogger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	// Default: 1 MiB. Adjust via MAX_REQUEST_BODY_BYTES.
	maxBytes := int64(1 << 20)
	if raw := strings.TrimSpace(os.Getenv("MAX_REQUEST_BODY_BYTES")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxBytes = parsed
		}
	}

	return func(c *gin.Context) {
		// Fast-path for known-size bodies.
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timeout := routerService.middlewareConfig.TimeoutDuration
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// Important: do NOT call c.Next() in a goroutine.
		// Gin's Context is not safe for concurrent use.
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
			correlatedLogger.Warn("Request timeout detected")
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				apperrors.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
			return
		}
	}
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowedOriginsStr := os.Getenv("CORS_ALLOWED_ORIGIN")

		if allowedOriginsStr == "" {
			routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set, denying cross-origin request", "origin", origin)
			c.Next()
			return
		}

		allowedOrigins := strings.Split(allowedOriginsStr, ",")
		for i, o := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(o)
		}

		originAllowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				originAllowed = true
				break
			}
		}

		if !originAllowed {
			routerService.logger.Warn("CORS origin not allowed", "origin", origin, "allowed_origins", allowedOrigins)
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware is the router-wide backstop. Routes with their own
// quota (the signup endpoint) additionally pass through QuotaMiddleware.
func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:%s", clientIP)

		limit, window := routerService.rateLimiter.GetLimitDetails()

		limited, err := routerService.rateLimiter.IsLimited(key)
		if err != nil {
			routerService.logger.Error("Rate limiter error", "error", err, "client_ip", clientIP)
			// On rate limiter error, allow the request but log the issue so
			// infrastructure problems do not block legitimate traffic.
			c.Next()
			return
		}

		if limited {
			routerService.logger.Warn("Rate limit exceeded", "client_ip", clientIP)
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Window", window.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(QuotaResponse{
				Limit:             limit,
				Window:            window.String(),
				RetryAfterSeconds: int(window.Seconds()),
			}).ToJSON())
			return
		}

		c.Next()
	}
}
