package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type googleRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type updateProfileRequest struct {
	Name         *string                `json:"name" validate:"omitempty,min=2,max=100"`
	Phone        *string                `json:"phone" validate:"omitempty,max=20"`
	PhotoURL     *string                `json:"photo_url" validate:"omitempty,url"`
	Bio          *string                `json:"bio" validate:"omitempty,max=500"`
	Role         *string                `json:"role" validate:"omitempty,oneof=BUYER SELLER RENTAL LABOR ADMIN buyer seller rental labor admin"`
	Skills       *[]string              `json:"skills"`
	Availability map[string]interface{} `json:"availability"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignInWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignUpWithEmail(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, result)
}

func (h *AuthHandler) Google(c echo.Context) error {
	var req googleRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignInWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuthHandler) Guest(c echo.Context) error {
	result, err := h.authUseCase.SignInAsGuest(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuthHandler) Me(c echo.Context) error {
	token, _ := c.Get("token").(string)
	user, err := h.authUseCase.CurrentUser(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	changes := entity.ProfileChanges{
		Name:         req.Name,
		Phone:        req.Phone,
		PhotoURL:     req.PhotoURL,
		Bio:          req.Bio,
		Skills:       req.Skills,
		Availability: req.Availability,
	}
	if req.Role != nil {
		role := entity.ParseRole(*req.Role)
		changes.Role = &role
	}

	user, err := h.authUseCase.UpdateProfile(c.Request().Context(), uid, changes)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}
