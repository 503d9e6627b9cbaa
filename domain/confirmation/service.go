package confirmation

import (
	"context"

	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
)

type ConfirmationService interface {
	// IssueToken creates a signed confirmation token for an email and stores
	// an audit record for it.
	IssueToken(ctx context.Context, email string, position int) (string, error)

	// Confirm validates a token and marks the matching waitlist entry as
	// confirmed.
	Confirm(ctx context.Context, token string) (*ConfirmResponse, error)
}

type confirmationService struct {
	logger     *log.Logger
	manager    *TokenManager
	repository ConfirmationRepository
	entries    signup.SignupRepository
}

func NewConfirmationService(
	logger *log.Logger,
	manager *TokenManager,
	repository ConfirmationRepository,
	entries signup.SignupRepository,
) ConfirmationService {
	return &confirmationService{
		logger:     logger,
		manager:    manager,
		repository: repository,
		entries:    entries,
	}
}

func (s *confirmationService) IssueToken(ctx context.Context, email string, position int) (string, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	token, err := s.manager.Issue(email)
	if err != nil {
		logger.Error("Failed to issue confirmation token", "error", err)
		return "", apperrors.NewInternalServerError("unable to issue confirmation token", err)
	}

	// Audit record only; the token is self-validating.
	record := &models.ConfirmationRecord{
		Token:    token,
		Email:    email,
		Position: position,
	}
	if err := s.repository.CreateRecord(ctx, record); err != nil {
		logger.Warn("Failed to store confirmation record", "error", err)
	}

	return token, nil
}

func (s *confirmationService) Confirm(ctx context.Context, token string) (*ConfirmResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	validation := s.manager.Validate(token)
	if !validation.Valid {
		logger.Warn("Rejected confirmation token", "reason", validation.Kind)

		switch validation.Kind {
		case KindExpired:
			return nil, apperrors.NewTokenExpiredError("confirmation token has expired", nil)
		case KindMalformedEmail:
			return nil, apperrors.NewTokenMalformedError("confirmation token carries a malformed email", nil)
		default:
			return nil, apperrors.NewTokenMalformedError("confirmation token is malformed", nil)
		}
	}

	if err := s.entries.MarkConfirmed(ctx, validation.Email); err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeNotFound {
			logger.Warn("Confirmation token for unknown email")
			return nil, apperrors.NewNotFoundError("no waitlist entry for this email", err)
		}
		logger.Error("Failed to mark entry confirmed", "error", err)
		return nil, err
	}

	if err := s.repository.MarkRecordConfirmed(ctx, token); err != nil {
		logger.Warn("Failed to update confirmation record", "error", err)
	}

	logger.Info("Waitlist entry confirmed")

	return &ConfirmResponse{Email: validation.Email, Confirmed: true}, nil
}
