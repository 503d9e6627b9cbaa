package signup

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	"github.com/akeren/waitlist-funnel/internal/notify"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/akeren/waitlist-funnel/pkg/tasks"
)

type SignupService interface {
	// Ingest registers a signup from any channel. Re-ingesting a known email
	// returns the original position and referral code without side effects.
	Ingest(ctx context.Context, req *IngestRequest) (*SignupResponse, error)

	// WaitlistSize returns the current number of entries. Display estimate
	// only; it can lag behind issued positions.
	WaitlistSize(ctx context.Context) (int64, error)
}

// TokenIssuer produces a confirmation token for a freshly created entry.
type TokenIssuer interface {
	IssueToken(ctx context.Context, email string, position int) (string, error)
}

// ConfirmationMailer delivers the post-signup confirmation email.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, to, token string, position int) error
}

// SignupNotifier announces a new signup to operator channels.
type SignupNotifier interface {
	SignupOccurred(ctx context.Context, event notify.SignupEvent) error
}

// TaskQueue runs side effects off the request path.
type TaskQueue interface {
	Submit(task tasks.Task) error
}

type signupService struct {
	logger     *log.Logger
	repository SignupRepository
	tokens     TokenIssuer
	mailer     ConfirmationMailer
	notifier   SignupNotifier
	queue      TaskQueue
}

func NewSignupService(
	logger *log.Logger,
	repository SignupRepository,
	tokens TokenIssuer,
	mailer ConfirmationMailer,
	notifier SignupNotifier,
	queue TaskQueue,
) SignupService {
	return &signupService{
		logger:     logger,
		repository: repository,
		tokens:     tokens,
		mailer:     mailer,
		notifier:   notifier,
		queue:      queue,
	}
}

func (s *signupService) Ingest(ctx context.Context, req *IngestRequest) (*SignupResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Ingest received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	email, ok := NormalizeEmail(req.Email)
	if !ok {
		logger.Error("Ingest received invalid email", "source", req.Source)
		return nil, apperrors.NewInvalidRequestError("invalid email address", nil)
	}

	existing, err := s.repository.FindEntryByEmail(ctx, email)
	if err != nil && apperrors.GetErrorType(err) != apperrors.ErrorTypeNotFound {
		logger.Error("Failed to check for existing entry", "error", err)
		return nil, err
	}

	if existing != nil {
		logger.Info("Duplicate signup absorbed", "position", existing.Position, "source", req.Source)
		return ToSignupResponse(existing, true), nil
	}

	position, err := s.repository.NextPosition(ctx)
	if err != nil {
		logger.Error("Failed to obtain next position", "error", err)
		return nil, err
	}

	entry := &models.WaitlistEntry{
		Email:          email,
		Name:           req.Name,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Position:       position,
		ReferralCode:   CodeFor(email),
		ReferredBy:     req.ReferredBy,
		Source:         req.Source,
		SignupDate:     time.Now(),
		OptedInUpdates: req.OptInUpdates,
		SubmissionID:   req.SubmissionID,
	}

	created, err := s.repository.CreateEntry(ctx, entry)
	if err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeConflict {
			// Lost a race with a concurrent signup for the same email. The
			// winner's entry is authoritative; the burned position stays
			// unused, which keeps positions monotonic.
			winner, findErr := s.repository.FindEntryByEmail(ctx, email)
			if findErr == nil {
				logger.Info("Concurrent duplicate signup absorbed", "position", winner.Position)
				return ToSignupResponse(winner, true), nil
			}
		}
		logger.Error("Failed to persist waitlist entry", "error", err)
		return nil, err
	}

	if req.ReferredBy != "" {
		logger.Info("Signup attributed to referrer", "referred_by", req.ReferredBy, "position", created.Position)
	}

	logger.Info("Waitlist entry created",
		"position", created.Position,
		"referral_code", created.ReferralCode,
		"source", created.Source,
	)

	s.enqueueSideEffects(created, req.ClientIP)

	return ToSignupResponse(created, false), nil
}

func (s *signupService) WaitlistSize(ctx context.Context) (int64, error) {
	return s.repository.CountEntries(ctx)
}

// enqueueSideEffects schedules the notification and confirmation email for a
// new entry. Failures are logged by the queue and never surface to the
// caller; the signup is already committed.
func (s *signupService) enqueueSideEffects(entry *models.WaitlistEntry, clientIP string) {
	event := notify.SignupEvent{
		Email:        entry.Email,
		Name:         entry.Name,
		Position:     entry.Position,
		ReferralCode: entry.ReferralCode,
		ReferredBy:   entry.ReferredBy,
		Source:       entry.Source,
		SignupDate:   entry.SignupDate,
		ClientIP:     clientIP,
	}

	if err := s.queue.Submit(tasks.Task{
		Name: fmt.Sprintf("notify-signup-%d", entry.Position),
		Run: func(ctx context.Context) error {
			return s.notifier.SignupOccurred(ctx, event)
		},
	}); err != nil {
		s.logger.Error("Failed to enqueue signup notification", "error", err)
	}

	email := entry.Email
	position := entry.Position

	if err := s.queue.Submit(tasks.Task{
		Name: fmt.Sprintf("confirmation-email-%d", position),
		Run: func(ctx context.Context) error {
			token, err := s.tokens.IssueToken(ctx, email, position)
			if err != nil {
				return fmt.Errorf("issue confirmation token: %w", err)
			}

			if err := s.mailer.SendConfirmation(ctx, email, token, position); err != nil {
				return fmt.Errorf("send confirmation email: %w", err)
			}

			if err := s.repository.RecordEmailSent(ctx, email, time.Now()); err != nil {
				s.logger.Warn("Failed to record sent email", "error", err)
			}

			return nil
		},
	}); err != nil {
		s.logger.Error("Failed to enqueue confirmation email", "error", err)
	}
}
