package confirmation

import (
	"github.com/akeren/waitlist-funnel/config/router"
	apperrors "github.com/akeren/waitlist-funnel/pkg/errors"
	"github.com/gin-gonic/gin"
)

func NewConfirmationController(service ConfirmationService) *router.RESTController {
	return router.NewRESTController(
		"ConfirmationController",
		"/confirm-email",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, "", confirmEmailHandler(service))
		},
	)
}

func confirmEmailHandler(service ConfirmationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		token := ctx.Query("token")
		if token == "" {
			return router.BadRequestResult("Missing token query parameter", nil)
		}

		response, err := service.Confirm(ctx.Request.Context(), token)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				gin.H{"error": apperrors.GetErrorType(err)},
			)
		}

		return router.OKResult(response, "Email confirmed successfully")
	}
}
