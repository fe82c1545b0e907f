package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	public := e.Group("/v1/auth")
	public.Use(middleware.RateLimit(limiter, ratelimit.ActionAuth))

	public.POST("/register", authHandler.Register)
	public.POST("/session", authHandler.Login)

	e.DELETE("/v1/auth/session", authHandler.Logout, authMiddleware.Authenticate)
}
