package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SubmissionResult reports what a webhook delivery produced. Ignored is set
// for event types other than form responses.
type SubmissionResult struct {
	Ignored bool
	Signup  *signup.SignupResponse
}

type WebhookService interface {
	// HandleSubmission verifies, parses, and ingests a raw webhook delivery.
	HandleSubmission(ctx context.Context, body []byte, signature, clientIP string) (*SubmissionResult, error)
}

type webhookService struct {
	logger  *log.Logger
	signups signup.SignupService
	mapping *FieldMapping
	secret  string
	titler  cases.Caser
}

// NewWebhookService validates the field mapping up front so a broken mapping
// is a startup failure, not a runtime one.
func NewWebhookService(
	logger *log.Logger,
	signups signup.SignupService,
	mapping *FieldMapping,
	secret string,
) (WebhookService, error) {
	if mapping == nil {
		mapping = DefaultTallyMapping()
	}

	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webhook field mapping: %w", err)
	}

	return &webhookService{
		logger:  logger,
		signups: signups,
		mapping: mapping,
		secret:  secret,
		titler:  cases.Title(language.English),
	}, nil
}

func (s *webhookService) HandleSubmission(ctx context.Context, body []byte, signature, clientIP string) (*SubmissionResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	// Signature check runs against the raw body, before any parsing.
	if s.secret != "" && signature != "" {
		if !VerifySignature(s.secret, body, signature) {
			logger.Warn("Webhook delivery with invalid signature rejected")
			return nil, apperrors.NewUnauthorizedError("webhook signature verification failed", nil)
		}
	}

	var payload TallyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		return nil, apperrors.NewInvalidRequestError("malformed webhook payload", err)
	}

	if payload.EventType != EventTypeFormResponse {
		logger.Info("Ignoring webhook event", "event_type", payload.EventType)
		return &SubmissionResult{Ignored: true}, nil
	}

	req := s.extractSignup(payload.Data, clientIP)
	if req.Email == "" {
		logger.Error("Webhook form response has no email field", "mapping_version", s.mapping.Version)
		return nil, apperrors.NewInvalidRequestError("form response contains no email field", nil)
	}

	response, err := s.signups.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{Signup: response}, nil
}

// extractSignup walks the submitted fields and maps labels to waitlist
// attributes. Unmapped fields are skipped.
func (s *webhookService) extractSignup(data TallyData, clientIP string) *signup.IngestRequest {
	req := &signup.IngestRequest{
		Source:       models.SourceWebhook,
		SubmissionID: data.SubmissionID,
		ClientIP:     clientIP,
	}

	for _, field := range data.Fields {
		kind, ok := s.mapping.Resolve(field.Label)
		if !ok {
			continue
		}

		switch kind {
		case FieldEmail:
			req.Email = stringValue(field.Value)
		case FieldFirstName:
			req.FirstName = s.titler.String(stringValue(field.Value))
		case FieldLastName:
			req.LastName = s.titler.String(stringValue(field.Value))
		case FieldFullName:
			req.Name = s.titler.String(stringValue(field.Value))
		case FieldReferralCode:
			req.ReferredBy = strings.TrimSpace(stringValue(field.Value))
		case FieldOptIn:
			req.OptInUpdates = boolValue(field.Value)
		}
	}

	if req.Name == "" && (req.FirstName != "" || req.LastName != "") {
		req.Name = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}

	return req
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		lowered := strings.ToLower(strings.TrimSpace(v))
		return lowered == "true" || lowered == "yes" || lowered == "1"
	case []any:
		// Checkbox fields arrive as the list of selected options.
		return len(v) > 0
	default:
		return false
	}
}
