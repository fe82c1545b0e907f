package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
)

func SetupWatchlistRouter(e *echo.Echo, watchlistHandler *handler.WatchlistHandler, authMiddleware *middleware.AuthMiddleware) {
	watchlist := e.Group("/v1/watchlist")
	watchlist.Use(authMiddleware.Authenticate)

	watchlist.GET("", watchlistHandler.GetWatchlist)
	watchlist.POST("/:animalId/toggle", watchlistHandler.Toggle)
}
