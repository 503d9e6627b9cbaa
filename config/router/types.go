package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

type ServiceResult struct {
	StatusCode int    `json:"code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// QuotaResponse is the body returned on a 429 from a quota-limited route.
type QuotaResponse struct {
	Limit             int    `json:"limit"`
	Window            string `json:"window"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	return gin.H{
		"code":    result.StatusCode,
		"data":    result.Data,
		"message": result.Message,
	}
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
