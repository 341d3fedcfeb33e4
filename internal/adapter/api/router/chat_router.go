package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.CreateOrGetRoom)
	chats.POST("/:id/messages", chatHandler.SendMessage)
}
