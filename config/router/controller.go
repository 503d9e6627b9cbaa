package router

import (
	"net/http"
	"strings"
)

func normalizePath(controller *RESTController, relativePath string) string {
	var path string = controller.mountPoint

	if relativePath != "" {
		path = path + "/" + relativePath
	}

	if path[0] != '/' {
		path = "/" + path
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	return strings.ReplaceAll(path, "//", "/")
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		if result == nil {
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("A handler returned an undefined result. This typically indicates a bug in a handler's implementation.").ToJSON())
			return
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	mountPoint = strings.ReplaceAll("/"+mountPoint, "//", "/")

	return &RESTController{
		name:       name,
		mountPoint: mountPoint,
		prepare:    prepare,
	}
}

func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	controller.handlerCount++
	mountPoint := normalizePath(controller, path)
	routerService.engine.POST(mountPoint, append(middlewares, createHandler(handler))...)
	routerService.logger.Debug("Handler registered", "method", "POST", "path", mountPoint)
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	controller.handlerCount++
	mountPoint := normalizePath(controller, path)
	routerService.engine.GET(mountPoint, append(middlewares, createHandler(handler))...)
	routerService.logger.Debug("Handler registered", "method", "GET", "path", mountPoint)
}
