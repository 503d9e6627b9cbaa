package admin

import (
	"context"
	"testing"

	"github.com/akeren/waitlist-funnel/domain/confirmation"
	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubConfirmations struct{}

func (stubConfirmations) IssueToken(_ context.Context, _ string, _ int) (string, error) {
	return "stub-token", nil
}

func (stubConfirmations) Confirm(_ context.Context, _ string) (*confirmation.ConfirmResponse, error) {
	return nil, nil
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) SendConfirmation(_ context.Context, _, _ string, _ int) error {
	m.sent = append(m.sent, "confirmation")
	return nil
}

func (m *recordingMailer) SendWelcome(_ context.Context, _ string, _ int) error {
	m.sent = append(m.sent, "welcome")
	return nil
}

func (m *recordingMailer) SendHowToUse(_ context.Context, _ string) error {
	m.sent = append(m.sent, "how_to_use")
	return nil
}

func TestAdminService_SendTestEmails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := log.NewLoggerWithJSONOutput()

	t.Run("sends the full sequence in order", func(t *testing.T) {
		mockRepo := signup.NewMockSignupRepository(ctrl)
		mailer := &recordingMailer{}
		service := NewAdminService(logger, mockRepo, stubConfirmations{}, mailer)

		mockRepo.EXPECT().
			FindEntryByEmail(gomock.Any(), "user@example.com").
			Return(&models.WaitlistEntry{Email: "user@example.com", Position: 4}, nil)
		mockRepo.EXPECT().
			RecordEmailSent(gomock.Any(), "user@example.com", gomock.Any()).
			Return(nil)

		response, err := service.SendTestEmails(context.Background(), "User@Example.com")

		require.NoError(t, err)
		assert.Equal(t, []string{"confirmation", "welcome", "how_to_use"}, response.Sent)
		assert.Equal(t, []string{"confirmation", "welcome", "how_to_use"}, mailer.sent)
	})

	t.Run("unknown email returns not found", func(t *testing.T) {
		mockRepo := signup.NewMockSignupRepository(ctrl)
		mailer := &recordingMailer{}
		service := NewAdminService(logger, mockRepo, stubConfirmations{}, mailer)

		mockRepo.EXPECT().
			FindEntryByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, apperrors.NewNotFoundError("waitlist entry not found", nil))

		response, err := service.SendTestEmails(context.Background(), "ghost@example.com")

		assert.Nil(t, response)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetErrorType(err))
		assert.Empty(t, mailer.sent)
	})

	t.Run("invalid email is rejected before lookup", func(t *testing.T) {
		mockRepo := signup.NewMockSignupRepository(ctrl)
		service := NewAdminService(logger, mockRepo, stubConfirmations{}, &recordingMailer{})

		response, err := service.SendTestEmails(context.Background(), "not-an-email")

		assert.Nil(t, response)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	})
}
