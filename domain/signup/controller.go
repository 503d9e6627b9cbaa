package signup

import (
	"github.com/akeren/waitlist-funnel/config/router"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/akeren/waitlist-funnel/pkg/ratelimit"
)

func NewSignupController(
	service SignupService,
	limiter ratelimit.QuotaLimiter,
) *router.RESTController {

	return router.NewRESTController(
		"SignupController",
		"/email-waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, "", createSignupHandler(service), rs.QuotaMiddleware(limiter))
		},
	)
}

func createSignupHandler(service SignupService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SignupRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Ingest(ctx.Request.Context(), ToIngestRequest(&req, ctx.ClientIP()))
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		if response.AlreadyExists {
			return router.OKResult(response, "Email is already on the waitlist")
		}

		return router.OKResult(response, "Waitlist signup recorded successfully")
	}
}
