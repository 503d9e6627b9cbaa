package domain

import (
	"github.com/akeren/waitlist-funnel/config"
	"github.com/akeren/waitlist-funnel/domain/admin"
	"github.com/akeren/waitlist-funnel/domain/confirmation"
	"github.com/akeren/waitlist-funnel/domain/monitoring"
	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/domain/webhook"
	"github.com/akeren/waitlist-funnel/internal/email"
	"github.com/akeren/waitlist-funnel/internal/notify"
	"github.com/akeren/waitlist-funnel/pkg/ratelimit"
)

// SetupCoreDomain wires the funnel's services together and mounts every
// controller on the router.
func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	logger := appConfig.Logger
	cfg := appConfig.Config

	mailerConfig := email.NewConfigFromEnv()
	mailer := email.NewSMTPSender(logger, mailerConfig)

	notifyConfig := notify.NewConfigFromEnv()
	notifier := notify.NewWebhookDispatcher(logger, notifyConfig)

	signupRepository := signup.NewSignupRepository(appConfig.DB)

	tokenManager := confirmation.NewTokenManager(cfg.ConfirmationSecret, cfg.ConfirmationTTL)
	confirmationRepository := confirmation.NewConfirmationRepository(appConfig.DB)
	confirmationService := confirmation.NewConfirmationService(logger, tokenManager, confirmationRepository, signupRepository)

	signupService := signup.NewSignupService(
		logger,
		signupRepository,
		confirmationService,
		mailer,
		notifier,
		appConfig.Tasks,
	)

	webhookService, err := webhook.NewWebhookService(logger, signupService, webhook.DefaultTallyMapping(), cfg.TallySigningSecret)
	if err != nil {
		return err
	}

	adminService := admin.NewAdminService(logger, signupRepository, confirmationService, mailer)

	// Redis-backed when a cache is configured so the quota survives restarts
	// and is shared across replicas.
	signupQuota := ratelimit.NewQuotaLimiter(&ratelimit.QuotaConfig{
		Requests: cfg.SignupQuotaRequests,
		Window:   cfg.SignupQuotaWindow,
		Redis:    config.GetRedisClient(appConfig.Cache),
		Logger:   logger,
	})

	rs := appConfig.RouterService
	rs.MountController(monitoring.NewMonitoringController(
		appConfig.DB,
		logger,
		appConfig.Cache,
		signupService,
		mailerConfig.IsConfigured(),
		notifyConfig.WebhookURL != "",
	))
	rs.MountController(signup.NewSignupController(signupService, signupQuota))
	rs.MountController(confirmation.NewConfirmationController(confirmationService))
	rs.MountController(webhook.NewWebhookController(webhookService))
	rs.MountController(admin.NewAdminController(cfg.AdminAPIKey, adminService))

	return nil
}
