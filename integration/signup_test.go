package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/akeren/waitlist-funnel/config"
	"github.com/akeren/waitlist-funnel/config/router"
	"github.com/akeren/waitlist-funnel/domain"
	"github.com/akeren/waitlist-funnel/domain/confirmation"
	"github.com/akeren/waitlist-funnel/domain/webhook"
	"github.com/akeren/waitlist-funnel/internal/log"
	"github.com/akeren/waitlist-funnel/internal/models"
	"github.com/akeren/waitlist-funnel/pkg/tasks"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testConfirmationSecret = "integration-test-secret"
	testSigningSecret      = "integration-signing-secret"
	testAdminKey           = "integration-admin-key"
)

type SignupAPITestSuite struct {
	suite.Suite
	db        *gorm.DB
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

func (suite *SignupAPITestSuite) SetupSuite() {
	os.Setenv("CONFIRMATION_TOKEN_SECRET", testConfirmationSecret)
	os.Setenv("TALLY_SIGNING_SECRET", testSigningSecret)
	os.Setenv("ADMIN_API_KEY", testAdminKey)
	// High quota so suite traffic from a single IP is never throttled; the
	// quota itself is covered by TestSignupQuotaEnforced.
	os.Setenv("SIGNUP_QUOTA_REQUESTS", "1000")

	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(models.ModelRegistry...)
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()
	suite.Require().NoError(config.SeedCounter(suite.logger, suite.db))

	suite.appConfig = &config.ApplicationConfig{
		DB:     suite.db,
		Logger: suite.logger,
		Tasks:  tasks.NewQueue(suite.logger, tasks.DefaultConfig()),
		Config: config.NewAppConfig(),
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	suite.Require().NoError(domain.SetupCoreDomain(suite.appConfig))

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *SignupAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.appConfig != nil && suite.appConfig.Tasks != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		suite.appConfig.Tasks.Close(ctx)
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *SignupAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM waitlist_entries")
	suite.db.Exec("DELETE FROM confirmation_records")
}

func (suite *SignupAPITestSuite) postJSON(path string, body any) *http.Response {
	jsonBody, err := json.Marshal(body)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)

	return resp
}

func newTestTokenManager(suite *SignupAPITestSuite) *confirmation.TokenManager {
	return confirmation.NewTokenManager(testConfirmationSecret, suite.appConfig.Config.ConfirmationTTL)
}

func decodeEnvelope(suite *SignupAPITestSuite, resp *http.Response) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	return response
}

func (suite *SignupAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	response := decodeEnvelope(suite, resp)
	suite.Contains(response["message"], "health check completed")

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(1), data["database"])
	suite.Contains(data, "uptime")
}

func (suite *SignupAPITestSuite) TestDirectSignupAssignsPositionAndReferralCode() {
	resp := suite.postJSON("/email-waitlist", map[string]any{
		"email":      "first@example.com",
		"first_name": "First",
		"last_name":  "User",
	})
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	response := decodeEnvelope(suite, resp)
	data := response["data"].(map[string]interface{})

	suite.Greater(data["position"], float64(0))
	suite.Contains(data["referral_code"], "hs_")
	suite.Equal(false, data["already_exists"])
}

func (suite *SignupAPITestSuite) TestDuplicateSignupIsIdempotent() {
	first := suite.postJSON("/email-waitlist", map[string]any{"email": "repeat@example.com"})
	defer first.Body.Close()
	suite.Equal(http.StatusOK, first.StatusCode)
	firstData := decodeEnvelope(suite, first)["data"].(map[string]interface{})

	second := suite.postJSON("/email-waitlist", map[string]any{"email": " Repeat@Example.COM "})
	defer second.Body.Close()
	suite.Equal(http.StatusOK, second.StatusCode)
	secondData := decodeEnvelope(suite, second)["data"].(map[string]interface{})

	suite.Equal(firstData["position"], secondData["position"])
	suite.Equal(firstData["referral_code"], secondData["referral_code"])
	suite.Equal(true, secondData["already_exists"])
}

func (suite *SignupAPITestSuite) TestPositionsAreStrictlyIncreasing() {
	var previous float64

	for _, email := range []string{"inc1@example.com", "inc2@example.com", "inc3@example.com"} {
		resp := suite.postJSON("/email-waitlist", map[string]any{"email": email})
		data := decodeEnvelope(suite, resp)["data"].(map[string]interface{})
		resp.Body.Close()

		position := data["position"].(float64)
		suite.Greater(position, previous)
		previous = position
	}
}

func (suite *SignupAPITestSuite) TestInvalidEmailRejected() {
	resp := suite.postJSON("/email-waitlist", map[string]any{"email": "not-an-email"})
	defer resp.Body.Close()

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *SignupAPITestSuite) TestConfirmationRoundTrip() {
	resp := suite.postJSON("/email-waitlist", map[string]any{"email": "confirmme@example.com"})
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	// Issue a token through the same token manager configuration the server
	// uses, then hit the confirm endpoint with it.
	manager := newTestTokenManager(suite)
	token, err := manager.Issue("confirmme@example.com")
	suite.Require().NoError(err)

	confirmResp, err := http.Get(suite.baseURL + "/confirm-email?token=" + token)
	suite.Require().NoError(err)
	defer confirmResp.Body.Close()

	suite.Equal(http.StatusOK, confirmResp.StatusCode)

	var entry models.WaitlistEntry
	suite.Require().NoError(suite.db.Where("email = ?", "confirmme@example.com").First(&entry).Error)
	suite.True(entry.Confirmed)
}

func (suite *SignupAPITestSuite) TestConfirmationRejectsGarbageToken() {
	resp, err := http.Get(suite.baseURL + "/confirm-email?token=garbage")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	response := decodeEnvelope(suite, resp)
	data := response["data"].(map[string]interface{})
	suite.Equal("TOKEN_MALFORMED", data["error"])
}

func (suite *SignupAPITestSuite) TestWebhookSignupWithValidSignature() {
	body, err := json.Marshal(webhook.TallyPayload{
		EventType: webhook.EventTypeFormResponse,
		Data: webhook.TallyData{
			SubmissionID: "sub_it_1",
			Fields: []webhook.TallyField{
				{Label: "Email", Value: "hooked@example.com"},
				{Label: "First name", Value: "hooked"},
			},
		},
	})
	suite.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, suite.baseURL+"/webhooks/tally", bytes.NewReader(body))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.SignatureHeader, webhook.ComputeSignature(testSigningSecret, body))

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusCreated, resp.StatusCode)

	var entry models.WaitlistEntry
	suite.Require().NoError(suite.db.Where("email = ?", "hooked@example.com").First(&entry).Error)
	suite.Equal(models.SourceWebhook, entry.Source)
	suite.Equal("sub_it_1", entry.SubmissionID)
}

func (suite *SignupAPITestSuite) TestWebhookRejectsBadSignature() {
	body := []byte(`{"eventType":"FORM_RESPONSE","data":{"fields":[{"label":"Email","value":"evil@example.com"}]}}`)

	req, err := http.NewRequest(http.MethodPost, suite.baseURL+"/webhooks/tally", bytes.NewReader(body))
	suite.Require().NoError(err)
	req.Header.Set(webhook.SignatureHeader, "forged")

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Where("email = ?", "evil@example.com").Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *SignupAPITestSuite) TestWebhookIgnoresOtherEventTypes() {
	body := []byte(`{"eventType":"FORM_CREATED","data":{}}`)

	resp, err := http.Post(suite.baseURL+"/webhooks/tally", "application/json", bytes.NewReader(body))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *SignupAPITestSuite) TestAdminRouteRequiresAPIKey() {
	resp := suite.postJSON("/admin/send-test-emails", map[string]any{"email": "anyone@example.com"})
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *SignupAPITestSuite) TestStatsReportsWaitlistSize() {
	resp := suite.postJSON("/email-waitlist", map[string]any{"email": "counted@example.com"})
	resp.Body.Close()

	statsResp, err := http.Get(suite.baseURL + "/stats")
	suite.Require().NoError(err)
	defer statsResp.Body.Close()

	suite.Equal(http.StatusOK, statsResp.StatusCode)

	data := decodeEnvelope(suite, statsResp)["data"].(map[string]interface{})
	suite.Equal(float64(1), data["signups"])
}

func TestSignupAPISuite(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, new(SignupAPITestSuite))
}
