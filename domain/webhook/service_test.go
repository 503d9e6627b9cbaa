package webhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSignupService struct {
	requests []*signup.IngestRequest
	response *signup.SignupResponse
}

func (s *stubSignupService) Ingest(_ context.Context, req *signup.IngestRequest) (*signup.SignupResponse, error) {
	s.requests = append(s.requests, req)
	if s.response != nil {
		return s.response, nil
	}
	return &signup.SignupResponse{Position: 1, ReferralCode: "hs_000001"}, nil
}

func (s *stubSignupService) WaitlistSize(_ context.Context) (int64, error) {
	return int64(len(s.requests)), nil
}

func formResponseBody(t *testing.T, fields []TallyField) []byte {
	t.Helper()

	body, err := json.Marshal(TallyPayload{
		EventID:   "evt_1",
		EventType: EventTypeFormResponse,
		Data: TallyData{
			SubmissionID: "sub_1",
			Fields:       fields,
		},
	})
	require.NoError(t, err)

	return body
}

func TestWebhookService_HandleSubmission(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("invalid signature is rejected before parsing", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "shared-secret")
		require.NoError(t, err)

		body := []byte(`{"eventType":"FORM_RESPONSE"}`)

		result, err := service.HandleSubmission(context.Background(), body, "bogus-signature", "203.0.113.9")

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetErrorType(err))
		assert.Empty(t, signups.requests, "rejected delivery must not reach ingestion")
	})

	t.Run("valid signature is accepted", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "shared-secret")
		require.NoError(t, err)

		body := formResponseBody(t, []TallyField{
			{Label: "Your email", Value: "user@example.com"},
		})

		result, err := service.HandleSubmission(context.Background(), body, ComputeSignature("shared-secret", body), "203.0.113.9")

		require.NoError(t, err)
		assert.NotNil(t, result.Signup)
		require.Len(t, signups.requests, 1)
	})

	t.Run("non form-response events are acknowledged and dropped", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "")
		require.NoError(t, err)

		body, marshalErr := json.Marshal(TallyPayload{EventType: "FORM_CREATED"})
		require.NoError(t, marshalErr)

		result, err := service.HandleSubmission(context.Background(), body, "", "203.0.113.9")

		require.NoError(t, err)
		assert.True(t, result.Ignored)
		assert.Empty(t, signups.requests)
	})

	t.Run("malformed payload is a bad request", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "")
		require.NoError(t, err)

		result, err := service.HandleSubmission(context.Background(), []byte("{not json"), "", "203.0.113.9")

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	})

	t.Run("form response without an email field is a bad request", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "")
		require.NoError(t, err)

		body := formResponseBody(t, []TallyField{
			{Label: "First name", Value: "ada"},
		})

		result, err := service.HandleSubmission(context.Background(), body, "", "203.0.113.9")

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
		assert.Empty(t, signups.requests)
	})

	t.Run("fields are mapped by label and names are title-cased", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "")
		require.NoError(t, err)

		body := formResponseBody(t, []TallyField{
			{Label: "What's your email?", Value: "Ada@Example.com"},
			{Label: "First name", Value: "ada"},
			{Label: "Last name", Value: "lovelace"},
			{Label: "Referral code (optional)", Value: " hs_abc123 "},
			{Label: "Send me product updates", Value: true},
			{Label: "Anything else?", Value: "unmapped"},
		})

		result, err := service.HandleSubmission(context.Background(), body, "", "203.0.113.9")

		require.NoError(t, err)
		assert.NotNil(t, result.Signup)

		require.Len(t, signups.requests, 1)
		req := signups.requests[0]
		assert.Equal(t, "Ada@Example.com", req.Email)
		assert.Equal(t, "Ada", req.FirstName)
		assert.Equal(t, "Lovelace", req.LastName)
		assert.Equal(t, "Ada Lovelace", req.Name)
		assert.Equal(t, "hs_abc123", req.ReferredBy)
		assert.True(t, req.OptInUpdates)
		assert.Equal(t, models.SourceWebhook, req.Source)
		assert.Equal(t, "sub_1", req.SubmissionID)
	})

	t.Run("checkbox opt-in arrives as a list of selections", func(t *testing.T) {
		signups := &stubSignupService{}
		service, err := NewWebhookService(logger, signups, nil, "")
		require.NoError(t, err)

		body := formResponseBody(t, []TallyField{
			{Label: "Email", Value: "user@example.com"},
			{Label: "Newsletter", Value: []any{"weekly digest"}},
		})

		_, err = service.HandleSubmission(context.Background(), body, "", "203.0.113.9")

		require.NoError(t, err)
		require.Len(t, signups.requests, 1)
		assert.True(t, signups.requests[0].OptInUpdates)
	})
}

func TestFieldMapping_Validate(t *testing.T) {
	t.Run("default mapping is valid", func(t *testing.T) {
		assert.NoError(t, DefaultTallyMapping().Validate())
	})

	t.Run("mapping without an email rule fails startup", func(t *testing.T) {
		mapping := &FieldMapping{
			Version: "test",
			Rules:   []MappingRule{{Contains: "name", Field: FieldFullName}},
		}

		logger := log.NewLoggerWithJSONOutput()
		_, err := NewWebhookService(logger, &stubSignupService{}, mapping, "")

		assert.Error(t, err)
	})
}
