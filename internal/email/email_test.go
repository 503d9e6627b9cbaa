package email

import (
	"context"
	"testing"

	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/stretchr/testify/assert"
)

func TestSMTPSender_UnconfiguredHostSkipsSend(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	sender := NewSMTPSender(logger, &Config{WebsiteURL: "https://example.com"})

	assert.NoError(t, sender.SendConfirmation(context.Background(), "user@example.com", "token", 1))
	assert.NoError(t, sender.SendWelcome(context.Background(), "user@example.com", 1))
	assert.NoError(t, sender.SendHowToUse(context.Background(), "user@example.com"))
}

func TestConfig_IsConfigured(t *testing.T) {
	assert.False(t, (&Config{}).IsConfigured())
	assert.False(t, (&Config{Host: "smtp.example.com"}).IsConfigured())
	assert.True(t, (&Config{Host: "smtp.example.com", From: "hello@example.com"}).IsConfigured())
}

func TestConfirmationURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/confirm-email?token=abc",
		confirmationURL("https://example.com/", "abc"),
	)
	assert.Equal(t,
		"https://example.com/confirm-email?token=abc",
		confirmationURL("https://example.com", "abc"),
	)
}
