package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/internal/usecase"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter usecase.RateLimiter) {
	authHandler := handler.GetAuthHandler()
	signInLimit := middleware.RateLimit(limiter, ratelimit.ActionSignIn)

	auth := e.Group("/v1/auth")

	// Public routes
	auth.POST("/login", authHandler.Login, signInLimit)
	auth.POST("/register", authHandler.Register, signInLimit)
	auth.POST("/google", authHandler.Google, signInLimit)
	auth.POST("/guest", authHandler.Guest, signInLimit)

	// Protected routes
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)
	auth.PATCH("/me", authHandler.UpdateMe, authMiddleware.Authenticate)
}
