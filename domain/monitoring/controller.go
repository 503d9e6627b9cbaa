package monitoring

import (
	"context"
	"time"

	"github.com/akeren/waitlist-funnel/config/router"
	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/log"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"gorm.io/gorm"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database int `json:"database"` // 1 = healthy, 0 = unhealthy
	Cache    int `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	Email    int `json:"email"`    // 1 = configured, 0 = not configured
	Notifier int `json:"notifier"` // 1 = configured, 0 = not configured
	Uptime   int `json:"uptime"`   // uptime in seconds
}

type WaitlistStats struct {
	Signups int64 `json:"signups"`
}

type MonitoringController struct {
	db               *gorm.DB
	logger           *log.Logger
	cache            Cache
	signups          signup.SignupService
	emailConfigured  bool
	notifyConfigured bool
	startTime        time.Time
}

func NewMonitoringController(
	db *gorm.DB,
	logger *log.Logger,
	cache Cache,
	signups signup.SignupService,
	emailConfigured bool,
	notifyConfigured bool,
) *router.RESTController {
	ctrl := &MonitoringController{
		db:               db,
		logger:           logger,
		cache:            cache,
		signups:          signups,
		emailConfigured:  emailConfigured,
		notifyConfigured: notifyConfigured,
		startTime:        time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			routerService.AddGetHandler(controller, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(c)
			})

			routerService.AddGetHandler(controller, "stats", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.stats(c)
			})
		},
	)
}

func (ctrl *MonitoringController) monitor(c *router.RequestContext) *router.ServiceResult {
	return router.OKResult("Waitlist funnel is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	logger.Info("Health check endpoint called")

	status := ctrl.performHealthChecks(c.Request.Context(), logger)

	return router.OKResult(status, "waitlist-funnel health check completed")
}

// stats exposes the approximate waitlist size. The figure can lag behind
// issued positions because failed signups still consume a position.
func (ctrl *MonitoringController) stats(c *router.RequestContext) *router.ServiceResult {
	size, err := ctrl.signups.WaitlistSize(c.Request.Context())
	if err != nil {
		return router.ErrorResult(
			apperrors.HTTPStatusCode(err),
			apperrors.GetHumanReadableMessage(err),
			nil,
		)
	}

	return router.OKResult(WaitlistStats{Signups: size}, "Waitlist stats retrieved successfully")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	if ctrl.checkDatabase(ctx) {
		status.Database = 1
	} else {
		logger.Error("Database health check failed")
	}

	if ctrl.cache != nil {
		if ctrl.cache.Ping(ctx) == nil {
			status.Cache = 1
		} else {
			logger.Error("Cache health check failed")
		}
	} else {
		logger.Info("Cache not configured, cache health check skipped")
	}

	if ctrl.emailConfigured {
		status.Email = 1
	}

	if ctrl.notifyConfigured {
		status.Notifier = 1
	}

	return status
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return false
	}

	return sqlDB.PingContext(ctx) == nil
}
