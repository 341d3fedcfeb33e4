package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/internal/usecase"
)

func SetupFileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter usecase.RateLimiter) {
	fileHandler := handler.GetFileHandler()

	files := e.Group("/v1/files")
	files.Use(authMiddleware.Authenticate)

	files.POST("/images", fileHandler.UploadImages, middleware.RateLimit(limiter, ratelimit.ActionUpload))
	files.DELETE("", fileHandler.DeleteFiles)
}
