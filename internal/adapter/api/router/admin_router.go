package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/listings", adminHandler.ListListings)
	admin.PUT("/listings/:id/active", adminHandler.SetListingActive)
	admin.DELETE("/listings/:id", adminHandler.DeleteListing)
}
