package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	SetupAuthRouter(e, h.Auth, authMiddleware, limiter)
	SetupProfileRouter(e, h.Profile, authMiddleware)
	SetupAnimalRouter(e, h.Animal, authMiddleware)
	SetupWatchlistRouter(e, h.Watchlist, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupMediaRouter(e, h.Media, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
	SetupHealthRouter(e, h.Health)
}
