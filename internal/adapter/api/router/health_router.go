package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
}
