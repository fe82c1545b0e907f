package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
)

func SetupMediaRouter(e *echo.Echo, mediaHandler *handler.MediaHandler, authMiddleware *middleware.AuthMiddleware) {
	e.POST("/v1/media", mediaHandler.Upload, authMiddleware.Authenticate)
}
