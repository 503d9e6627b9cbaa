package webhook

import (
	"github.com/akeren/waitlist-funnel/config/router"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
)

// SignatureHeader carries the sender's HMAC of the raw request body.
const SignatureHeader = "X-Tally-Signature"

func NewWebhookController(service WebhookService) *router.RESTController {
	return router.NewRESTController(
		"WebhookController",
		"/webhooks",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, "/tally", tallyWebhookHandler(service))
		},
	)
}

func tallyWebhookHandler(service WebhookService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		body, err := ctx.GetRawData()
		if err != nil {
			logger.Error("Failed to read webhook body", "error", err)
			return router.BadRequestResult("Unable to read request body", nil)
		}

		result, err := service.HandleSubmission(
			ctx.Request.Context(),
			body,
			ctx.GetHeader(SignatureHeader),
			ctx.ClientIP(),
		)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		if result.Ignored {
			return router.OKResult(nil, "Event acknowledged")
		}

		if result.Signup.AlreadyExists {
			return router.OKResult(result.Signup, "Email is already on the waitlist")
		}

		return router.CreatedResult(result.Signup, "Waitlist entry")
	}
}
