package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/akeren/waitlist-funnel/config/router"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	"github.com/akeren/waitlist-funnel/pkg/constants"
	"github.com/akeren/waitlist-funnel/pkg/tasks"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Tasks           *tasks.Queue
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	// Signup funnel settings
	SignupQuotaRequests int
	SignupQuotaWindow   time.Duration
	ConfirmationSecret  string
	ConfirmationTTL     time.Duration
	TallySigningSecret  string
	AdminAPIKey         string
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests:   constants.DefaultRateLimitRequests,
		RateLimitWindow:     constants.DefaultRateLimitWindow(),
		RequestTimeout:      30 * time.Second,
		SignupQuotaRequests: constants.DefaultSignupQuotaRequests,
		SignupQuotaWindow:   constants.DefaultSignupQuotaWindow(),
		ConfirmationSecret:  os.Getenv("CONFIRMATION_TOKEN_SECRET"),
		ConfirmationTTL:     constants.DefaultConfirmationTTL,
		TallySigningSecret:  os.Getenv("TALLY_SIGNING_SECRET"),
		AdminAPIKey:         os.Getenv("ADMIN_API_KEY"),
	}

	// Override from environment variables
	if reqStr := os.Getenv("RATE_LIMIT_REQUESTS"); reqStr != "" {
		if parsed, err := strconv.Atoi(reqStr); err == nil && parsed > 0 {
			config.RateLimitRequests = parsed
		}
	}

	if winStr := os.Getenv("RATE_LIMIT_WINDOW"); winStr != "" {
		if parsed, err := time.ParseDuration(winStr); err == nil && parsed > 0 {
			config.RateLimitWindow = parsed
		}
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil && parsed > 0 {
			config.RequestTimeout = parsed
		}
	}

	if reqStr := os.Getenv("SIGNUP_QUOTA_REQUESTS"); reqStr != "" {
		if parsed, err := strconv.Atoi(reqStr); err == nil && parsed > 0 {
			config.SignupQuotaRequests = parsed
		}
	}

	if winStr := os.Getenv("SIGNUP_QUOTA_WINDOW"); winStr != "" {
		if parsed, err := time.ParseDuration(winStr); err == nil && parsed > 0 {
			config.SignupQuotaWindow = parsed
		}
	}

	if ttlStr := os.Getenv("CONFIRMATION_TOKEN_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil && parsed > 0 {
			config.ConfirmationTTL = parsed
		}
	}

	return config
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.Tasks != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ac.Tasks.Close(ctx); err != nil {
			ac.Logger.Error("Failed to drain task queue", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	dbCfg := &DBConfig{}
	db, err := NewDatabase(logger, dbCfg)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			return nil, err
		}
		if err := SeedCounter(logger, db); err != nil {
			return nil, err
		}
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	taskQueue := tasks.NewQueue(logger, tasks.DefaultConfig())

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Tasks:           taskQueue,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
