package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.GetSummaries)
	chats.GET("/messages", chatHandler.GetMessages)
	chats.GET("/view", chatHandler.GetView)
	chats.POST("/messages", chatHandler.SendMessage)
}
