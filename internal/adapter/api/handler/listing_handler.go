package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/response"
	"github.com/satvik8373/Rentieo/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	Title         string                 `json:"title" validate:"required,max=120"`
	Description   string                 `json:"description" validate:"max=5000"`
	Price         float64                `json:"price" validate:"gte=0"`
	Category      string                 `json:"category"`
	Type          string                 `json:"type"`
	Condition     string                 `json:"condition"`
	Images        []string               `json:"images" validate:"max=10,dive,url"`
	Location      string                 `json:"location"`
	Latitude      *float64               `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64               `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	RentalDetails map[string]interface{} `json:"rental_details"`
	LaborDetails  map[string]interface{} `json:"labor_details"`
}

type updateListingRequest struct {
	Title         *string                `json:"title" validate:"omitempty,min=1,max=120"`
	Description   *string                `json:"description" validate:"omitempty,max=5000"`
	Price         *float64               `json:"price" validate:"omitempty,gte=0"`
	Category      *string                `json:"category"`
	Type          *string                `json:"type"`
	Condition     *string                `json:"condition"`
	Images        *[]string              `json:"images" validate:"omitempty,max=10,dive,url"`
	Location      *string                `json:"location"`
	Latitude      *float64               `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64               `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	RentalDetails map[string]interface{} `json:"rental_details"`
	LaborDetails  map[string]interface{} `json:"labor_details"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req createListingRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.Create(c.Request().Context(), uid, usecase.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Type:          req.Type,
		Condition:     req.Condition,
		Images:        req.Images,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RentalDetails: req.RentalDetails,
		LaborDetails:  req.LaborDetails,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, listing)
}

// Search filters the active feed. With sort=distance and a radius it returns
// the closest listings first. Total counts every match, not just the page.
func (h *ListingHandler) Search(c echo.Context) error {
	input := usecase.SearchInput{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Type:     c.QueryParam("type"),
	}

	var err error
	if input.MinPrice, err = floatParam(c, "min_price"); err != nil {
		return response.Error(c, err)
	}
	if input.MaxPrice, err = floatParam(c, "max_price"); err != nil {
		return response.Error(c, err)
	}
	if input.Latitude, err = floatParam(c, "lat"); err != nil {
		return response.Error(c, err)
	}
	if input.Longitude, err = floatParam(c, "lon"); err != nil {
		return response.Error(c, err)
	}
	radius, err := floatParam(c, "radius")
	if err != nil {
		return response.Error(c, err)
	}
	if radius != nil {
		input.RadiusKm = *radius
	}

	var results []usecase.ListingResult
	if c.QueryParam("sort") == "distance" {
		if input.Latitude == nil || input.Longitude == nil || radius == nil {
			return response.Error(c, errors.BadRequest("lat, lon and radius are required to sort by distance", nil))
		}
		results, err = h.listingUseCase.Nearby(c.Request().Context(), *input.Latitude, *input.Longitude, *radius)
	} else {
		results, err = h.listingUseCase.Search(c.Request().Context(), input)
	}
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, utils.Paginate(results, utils.GetPaginationParams(c)), len(results))
}

func (h *ListingHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	listing, err := h.listingUseCase.Get(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateListingRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	changes := entity.ListingChanges{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Images:        req.Images,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RentalDetails: req.RentalDetails,
		LaborDetails:  req.LaborDetails,
	}
	if req.Category != nil {
		category := entity.ParseCategory(*req.Category)
		changes.Category = &category
	}
	if req.Type != nil {
		listingType := entity.ParseListingType(*req.Type)
		changes.Type = &listingType
	}
	if req.Condition != nil {
		condition := entity.ParseCondition(*req.Condition)
		changes.Condition = &condition
	}

	listing, err := h.listingUseCase.Update(c.Request().Context(), c.Param("id"), uid, changes)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.listingUseCase.Delete(c.Request().Context(), c.Param("id"), uid); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func (h *ListingHandler) SetActive(c echo.Context) error {
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

func (h *ListingHandler) ToggleSaved(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	saved, err := h.listingUseCase.ToggleSaved(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"saved": saved})
}

func (h *ListingHandler) Saved(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	listings, err := h.listingUseCase.Saved(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, listings, len(listings))
}

func floatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.BadRequest(name+" must be a number", err)
	}
	return &v, nil
}
