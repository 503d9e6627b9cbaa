package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDispatcher_SignupOccurred(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("posts the announcement to the configured webhook", func(t *testing.T) {
		var received map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(logger, &Config{
			WebhookURL: server.URL,
			Timeout:    2 * time.Second,
		})

		err := dispatcher.SignupOccurred(context.Background(), SignupEvent{
			Email:        "user@example.com",
			Position:     9,
			ReferralCode: "hs_abc123",
			Source:       "direct",
		})

		require.NoError(t, err)
		assert.Contains(t, received["text"], "#9")
		assert.Contains(t, received["text"], "user@example.com")
	})

	t.Run("unconfigured webhook is a silent no-op", func(t *testing.T) {
		dispatcher := NewWebhookDispatcher(logger, &Config{Timeout: time.Second})

		err := dispatcher.SignupOccurred(context.Background(), SignupEvent{Email: "user@example.com"})

		assert.NoError(t, err)
	})

	t.Run("server errors are reported to the caller", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(logger, &Config{
			WebhookURL: server.URL,
			Timeout:    2 * time.Second,
		})

		err := dispatcher.SignupOccurred(context.Background(), SignupEvent{Email: "user@example.com"})

		assert.Error(t, err)
	})

	t.Run("announcement includes the resolved location", func(t *testing.T) {
		geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"city": "Lagos", "country": "Nigeria"})
		}))
		defer geo.Close()

		var received map[string]any
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		}))
		defer hook.Close()

		dispatcher := NewWebhookDispatcher(logger, &Config{
			WebhookURL:   hook.URL,
			GeoLookupURL: geo.URL,
			Timeout:      2 * time.Second,
		})

		err := dispatcher.SignupOccurred(context.Background(), SignupEvent{
			Email:    "user@example.com",
			ClientIP: "203.0.113.9",
		})

		require.NoError(t, err)
		assert.Contains(t, received["text"], "Lagos, Nigeria")
	})
}
