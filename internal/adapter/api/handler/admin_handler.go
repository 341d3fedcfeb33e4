package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/response"
	"github.com/satvik8373/Rentieo/pkg/utils"
)

// AdminHandler serves the moderation views. Routes are mounted behind the
// admin middleware.
type AdminHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewAdminHandler(listingUseCase *usecase.ListingUseCase) *AdminHandler {
	return &AdminHandler{
		listingUseCase: listingUseCase,
	}
}

// ListListings returns every listing, active or not, newest first.
func (h *AdminHandler) ListListings(c echo.Context) error {
	listings, err := h.listingUseCase.ListAll(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, utils.Paginate(listings, utils.GetPaginationParams(c)), len(listings))
}

func (h *AdminHandler) SetListingActive(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req setActiveRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.listingUseCase.SetActive(c.Request().Context(), c.Param("id"), uid, *req.Active); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"active": *req.Active})
}

func (h *AdminHandler) DeleteListing(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.listingUseCase.Delete(c.Request().Context(), c.Param("id"), uid); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Listing deleted"})
}
