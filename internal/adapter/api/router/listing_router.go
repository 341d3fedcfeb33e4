package router

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()
	listings := e.Group("/v1/listings")

	// Browsing works signed out; a signed-in viewer counts as a view.
	listings.GET("", listingHandler.Search, authMiddleware.Optional)
	listings.GET("/:id", listingHandler.Get, authMiddleware.Optional)

	listings.POST("", listingHandler.Create, authMiddleware.Authenticate)
	listings.GET("/saved", listingHandler.Saved, authMiddleware.Authenticate)
	listings.PATCH("/:id", listingHandler.Update, authMiddleware.Authenticate)
	listings.DELETE("/:id", listingHandler.Delete, authMiddleware.Authenticate)
	listings.PUT("/:id/active", listingHandler.SetActive, authMiddleware.Authenticate)
	listings.PUT("/:id/saved", listingHandler.ToggleSaved, authMiddleware.Authenticate)
}
