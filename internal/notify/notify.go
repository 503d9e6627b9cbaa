package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/pkg/circuitbreaker"
)

// SignupEvent describes a new waitlist entry for operator channels.
type SignupEvent struct {
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Position     int       `json:"position"`
	ReferralCode string    `json:"referral_code"`
	ReferredBy   string    `json:"referred_by,omitempty"`
	Source       string    `json:"source"`
	SignupDate   time.Time `json:"signup_date"`
	ClientIP     string    `json:"-"`
}

// Dispatcher delivers signup announcements. Implementations are best-effort;
// the signup itself is already committed when they run.
type Dispatcher interface {
	SignupOccurred(ctx context.Context, event SignupEvent) error
}

type Config struct {
	WebhookURL   string
	GeoLookupURL string
	Timeout      time.Duration
}

func NewConfigFromEnv() *Config {
	cfg := &Config{
		WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		GeoLookupURL: os.Getenv("GEO_LOOKUP_URL"),
		Timeout:      3 * time.Second,
	}

	if timeoutStr := os.Getenv("NOTIFY_TIMEOUT"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil && parsed > 0 {
			cfg.Timeout = parsed
		}
	}

	return cfg
}

// WebhookDispatcher posts a short announcement to a chat-style webhook. A
// circuit breaker keeps a dead webhook endpoint from tying up task workers
// with doomed retries.
type WebhookDispatcher struct {
	logger  *log.Logger
	config  *Config
	client  *http.Client
	breaker circuitbreaker.CircuitBreaker
}

func NewWebhookDispatcher(logger *log.Logger, config *Config) *WebhookDispatcher {
	if config == nil {
		config = NewConfigFromEnv()
	}

	return &WebhookDispatcher{
		logger:  logger,
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
	}
}

func (d *WebhookDispatcher) SignupOccurred(ctx context.Context, event SignupEvent) error {
	if d.config.WebhookURL == "" {
		d.logger.Debug("Notification webhook not configured; skipping announcement")
		return nil
	}

	message := fmt.Sprintf("New waitlist signup #%d via %s: %s", event.Position, event.Source, event.Email)
	if event.ReferredBy != "" {
		message += fmt.Sprintf(" (referred by %s)", event.ReferredBy)
	}
	if location := d.lookupLocation(ctx, event.ClientIP); location != "" {
		message += fmt.Sprintf(" from %s", location)
	}

	payload, err := json.Marshal(map[string]any{
		"text":  message,
		"event": event,
	})
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	return d.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build notification request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("post notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
		}

		return nil
	})
}

// lookupLocation resolves a rough geographic label for an IP. Failures are
// swallowed; the announcement just omits the location.
func (d *WebhookDispatcher) lookupLocation(ctx context.Context, clientIP string) string {
	if d.config.GeoLookupURL == "" || clientIP == "" {
		return ""
	}

	url := fmt.Sprintf("%s/%s", d.config.GeoLookupURL, clientIP)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("Geo lookup failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var geo struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return ""
	}

	switch {
	case geo.City != "" && geo.Country != "":
		return geo.City + ", " + geo.Country
	case geo.Country != "":
		return geo.Country
	default:
		return ""
	}
}
