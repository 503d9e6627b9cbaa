package email

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/akeren/waitlist-funnel/internal/log"
)

// Sender delivers the funnel's transactional emails. Implementations must
// tolerate being called with an unconfigured transport: the signup flow never
// fails because email is down.
type Sender interface {
	SendConfirmation(ctx context.Context, to, token string, position int) error
	SendWelcome(ctx context.Context, to string, position int) error
	SendHowToUse(ctx context.Context, to string) error
}

type Config struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	WebsiteURL string
}

func NewConfigFromEnv() *Config {
	cfg := &Config{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       os.Getenv("SMTP_PORT"),
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		From:       os.Getenv("SMTP_FROM_ADDRESS"),
		WebsiteURL: os.Getenv("WEBSITE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "587"
	}

	if cfg.WebsiteURL == "" {
		cfg.WebsiteURL = "http://localhost:8080"
	}

	return cfg
}

func (c *Config) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// SMTPSender sends mail over plain SMTP with optional AUTH. When the host is
// not configured it logs and skips instead of failing, so local development
// works without a mail relay.
type SMTPSender struct {
	logger *log.Logger
	config *Config
	auth   smtp.Auth
}

func NewSMTPSender(logger *log.Logger, config *Config) *SMTPSender {
	if config == nil {
		config = NewConfigFromEnv()
	}

	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPSender{logger: logger, config: config, auth: auth}
}

func confirmationURL(base, token string) string {
	return fmt.Sprintf("%s/confirm-email?token=%s", strings.TrimRight(base, "/"), token)
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, to, token string, position int) error {
	confirmURL := confirmationURL(s.config.WebsiteURL, token)

	body := fmt.Sprintf(
		"Thanks for joining the waitlist!\r\n\r\n"+
			"You are number %d in line.\r\n\r\n"+
			"Please confirm your email address within 24 hours:\r\n%s\r\n",
		position, confirmURL,
	)

	return s.send(ctx, to, "Confirm your email address", body)
}

func (s *SMTPSender) SendWelcome(ctx context.Context, to string, position int) error {
	body := fmt.Sprintf(
		"Welcome aboard!\r\n\r\n"+
			"Your spot on the waitlist is confirmed. You are number %d in line.\r\n\r\n"+
			"Share your referral code with friends to move up.\r\n",
		position,
	)

	return s.send(ctx, to, "Welcome to the waitlist", body)
}

func (s *SMTPSender) SendHowToUse(ctx context.Context, to string) error {
	body := "Here is a quick tour of what you can do while you wait.\r\n\r\n" +
		"Visit " + s.config.WebsiteURL + " to learn more.\r\n"

	return s.send(ctx, to, "Getting started", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	if !s.config.IsConfigured() {
		s.logger.Warn("SMTP host not configured; skipping email", "subject", subject)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	message := strings.Join([]string{
		"From: " + s.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := s.config.Host + ":" + s.config.Port
	if err := smtp.SendMail(addr, s.auth, s.config.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send email %q to recipient: %w", subject, err)
	}

	s.logger.Info("Email sent", "subject", subject)

	return nil
}
