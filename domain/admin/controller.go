package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/akeren/waitlist-funnel/config/router"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
)

// APIKeyHeader authenticates operator requests to admin routes.
const APIKeyHeader = "X-Admin-Key"

func NewAdminController(apiKey string, service AdminService) *router.RESTController {
	return router.NewRESTController(
		"AdminController",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, "/send-test-emails", sendTestEmailsHandler(service), requireAPIKey(apiKey))
		},
	)
}

// requireAPIKey rejects requests whose key header does not match the
// configured operator key. An empty configured key disables admin routes
// entirely rather than leaving them open.
func requireAPIKey(apiKey string) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		logger := router.GetLogger(ctx)

		if apiKey == "" {
			logger.Warn("Admin route hit but no admin API key is configured")
			result := router.ErrorResult(http.StatusForbidden, "Admin routes are disabled", nil)
			ctx.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
			return
		}

		provided := ctx.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			logger.Warn("Admin route rejected invalid API key")
			result := router.UnauthorizedResult("Invalid admin API key")
			ctx.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
			return
		}

		ctx.Next()
	}
}

func sendTestEmailsHandler(service AdminService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req TestEmailsRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.SendTestEmails(ctx.Request.Context(), req.Email)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, "Test emails sent successfully")
	}
}
