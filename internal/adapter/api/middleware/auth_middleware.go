package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/response"
)

// TokenVerifier is satisfied by usecase.AuthUseCase.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate requires a bearer token and stores the caller's uid, raw
// token and identity on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get("Authorization"))
		if err != nil {
			return response.Error(c, err)
		}
		return m.verify(c, token, next)
	}
}

// AuthenticateSocket also accepts ?token= since browsers cannot set headers
// on a WebSocket handshake.
func (m *AuthMiddleware) AuthenticateSocket(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			var err error
			token, err = bearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return response.Error(c, err)
			}
		}
		return m.verify(c, token, next)
	}
}

// Optional identifies the caller when a valid bearer token is present and
// lets the request through either way.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get("Authorization"))
		if err != nil {
			return next(c)
		}
		identity, err := m.verifier.Authenticate(c.Request().Context(), token)
		if err != nil {
			return next(c)
		}
		c.Set("uid", identity.UID)
		c.Set("token", token)
		c.Set("identity", identity)
		return next(c)
	}
}

func (m *AuthMiddleware) verify(c echo.Context, token string, next echo.HandlerFunc) error {
	identity, err := m.verifier.Authenticate(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	c.Set("uid", identity.UID)
	c.Set("token", token)
	c.Set("identity", identity)

	return next(c)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.Unauthorized("Authorization header is required", nil)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}
