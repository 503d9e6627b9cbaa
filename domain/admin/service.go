package admin

import (
	"context"
	"time"

	"github.com/akeren/waitlist-funnel/domain/confirmation"
	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/email"
	"github.com/akeren/waitlist-funnel/internal/log"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
)

type AdminService interface {
	// SendTestEmails delivers the full email sequence to an existing entry
	// so operators can verify templates and SMTP wiring end to end.
	SendTestEmails(ctx context.Context, emailAddr string) (*TestEmailsResponse, error)
}

type adminService struct {
	logger        *log.Logger
	entries       signup.SignupRepository
	confirmations confirmation.ConfirmationService
	mailer        email.Sender
}

func NewAdminService(
	logger *log.Logger,
	entries signup.SignupRepository,
	confirmations confirmation.ConfirmationService,
	mailer email.Sender,
) AdminService {
	return &adminService{
		logger:        logger,
		entries:       entries,
		confirmations: confirmations,
		mailer:        mailer,
	}
}

func (s *adminService) SendTestEmails(ctx context.Context, emailAddr string) (*TestEmailsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	normalized, ok := signup.NormalizeEmail(emailAddr)
	if !ok {
		return nil, apperrors.NewInvalidRequestError("invalid email address", nil)
	}

	entry, err := s.entries.FindEntryByEmail(ctx, normalized)
	if err != nil {
		logger.Error("Test email target not found", "error", err)
		return nil, err
	}

	token, err := s.confirmations.IssueToken(ctx, entry.Email, entry.Position)
	if err != nil {
		return nil, err
	}

	sent := []string{}

	if err := s.mailer.SendConfirmation(ctx, entry.Email, token, entry.Position); err != nil {
		logger.Error("Failed to send test confirmation email", "error", err)
		return nil, apperrors.NewInternalServerError("unable to send confirmation email", err)
	}
	sent = append(sent, "confirmation")

	if err := s.mailer.SendWelcome(ctx, entry.Email, entry.Position); err != nil {
		logger.Error("Failed to send test welcome email", "error", err)
		return nil, apperrors.NewInternalServerError("unable to send welcome email", err)
	}
	sent = append(sent, "welcome")

	if err := s.mailer.SendHowToUse(ctx, entry.Email); err != nil {
		logger.Error("Failed to send test how-to email", "error", err)
		return nil, apperrors.NewInternalServerError("unable to send how-to email", err)
	}
	sent = append(sent, "how_to_use")

	if err := s.entries.RecordEmailSent(ctx, entry.Email, time.Now()); err != nil {
		logger.Warn("Failed to record sent email", "error", err)
	}

	logger.Info("Test email sequence sent", "count", len(sent))

	return &TestEmailsResponse{Email: entry.Email, Sent: sent}, nil
}
