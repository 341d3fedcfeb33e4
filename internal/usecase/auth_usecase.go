package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const (
	guestEmail = "guest@rentieo.com"
	guestName  = "Guest User"
)

var authMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "No account found with this email",
	"USER_NOT_FOUND":              "No account found with this email",
	"INVALID_PASSWORD":            "Incorrect password",
	"WRONG_PASSWORD":              "Incorrect password",
	"INVALID_EMAIL":               "Invalid email address",
	"USER_DISABLED":               "This account has been disabled",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many login attempts. Please wait a few minutes and try again.",
	"TOO_MANY_REQUESTS":           "Too many login attempts. Please wait a few minutes and try again.",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password",
	"INVALID_CREDENTIAL":          "Invalid email or password",
	"EMAIL_EXISTS":                "An account with this email already exists",
	"WEAK_PASSWORD":               "Password is too weak",
}

const defaultAuthMessage = "Authentication failed. Please try again"

// AuthMessage maps a provider error code to the text shown to users.
func AuthMessage(code string) string {
	if msg, ok := authMessages[strings.ToUpper(code)]; ok {
		return msg
	}
	return defaultAuthMessage
}

type AuthUseCase struct {
	identity service.IdentityProvider
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAuthUseCase(identity service.IdentityProvider, userRepo repository.UserRepository) *AuthUseCase {
	return &AuthUseCase{
		identity: identity,
		userRepo: userRepo,
		now:      time.Now,
	}
}

type AuthResult struct {
	User         *entity.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	IsNewUser    bool         `json:"is_new_user"`
}

func newAuthResult(user *entity.User, id *service.Identity) *AuthResult {
	return &AuthResult{
		User:         user,
		Token:        id.IDToken,
		RefreshToken: id.RefreshToken,
		IsNewUser:    id.IsNewUser,
	}
}

func (uc *AuthUseCase) SignInWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	id, err := uc.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		logger.Warn("Sign in failed for %s: %v", email, err)
		return nil, authError(err)
	}
	if id.Email == "" {
		id.Email = email
	}

	user := uc.loadOrCreateProfile(ctx, id)
	return newAuthResult(user, id), nil
}

func (uc *AuthUseCase) SignUpWithEmail(ctx context.Context, email, password, name string) (*AuthResult, error) {
	id, err := uc.identity.SignUpWithPassword(ctx, email, password, name)
	if err != nil {
		logger.Warn("Sign up failed for %s: %v", email, err)
		return nil, authError(err)
	}

	user := &entity.User{
		ID:        id.UID,
		Email:     email,
		Name:      name,
		Role:      entity.RoleBuyer,
		CreatedAt: uc.now(),
	}
	if !uc.saveProfile(ctx, user) {
		logger.Warn("Account %s created but profile could not be saved", id.UID)
	}
	return newAuthResult(user, id), nil
}

func (uc *AuthUseCase) SignInWithGoogle(ctx context.Context, googleIDToken string) (*AuthResult, error) {
	id, err := uc.identity.SignInWithIDP(ctx, googleIDToken)
	if err != nil {
		logger.Warn("Google sign in failed: %v", err)
		return nil, authError(err)
	}

	user := uc.loadOrCreateProfile(ctx, id)
	return newAuthResult(user, id), nil
}

func (uc *AuthUseCase) SignInAsGuest(ctx context.Context) (*AuthResult, error) {
	id, err := uc.identity.SignInAnonymously(ctx)
	if err != nil {
		logger.Warn("Guest sign in failed: %v", err)
		return nil, authError(err)
	}

	user := &entity.User{
		ID:        id.UID,
		Email:     guestEmail,
		Name:      guestName,
		Role:      entity.RoleBuyer,
		CreatedAt: uc.now(),
	}
	if err := uc.userRepo.Save(ctx, user, false); err != nil {
		return nil, err
	}
	if err := uc.userRepo.Update(ctx, user.ID, map[string]interface{}{"isGuest": true}); err != nil {
		logger.Warn("Failed to flag guest %s: %v", user.ID, err)
	}
	return newAuthResult(user, id), nil
}

// Authenticate resolves a bearer token to the signed-in identity.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*service.Identity, error) {
	if token == "" {
		return nil, errors.Unauthorized("Authorization token is required", nil)
	}
	id, err := uc.identity.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return id, nil
}

// CurrentUser returns the profile of the token's owner, creating it from the
// identity when the profile document is missing.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	id, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return uc.loadOrCreateProfile(ctx, id), nil
}

func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, changes entity.ProfileChanges) (*entity.User, error) {
	if changes.Role != nil && *changes.Role == entity.RoleAdmin {
		return nil, errors.Forbidden("Admin role cannot be self-assigned", nil)
	}
	if changes.Name != nil && strings.TrimSpace(*changes.Name) == "" {
		return nil, errors.BadRequest("Name cannot be empty", nil)
	}

	fields := mapper.EncodeProfileChanges(changes)
	if err := uc.userRepo.Update(ctx, userID, fields); err != nil {
		return nil, err
	}

	logger.Info("Profile %s updated", userID)
	return uc.userRepo.GetByID(ctx, userID)
}

// loadOrCreateProfile never fails: when the store cannot be read the profile
// is built from the identity instead.
func (uc *AuthUseCase) loadOrCreateProfile(ctx context.Context, id *service.Identity) *entity.User {
	user, err := uc.userRepo.GetByID(ctx, id.UID)
	if err == nil {
		return user
	}

	name := id.DisplayName
	if name == "" {
		name = "User"
	}
	fallback := &entity.User{
		ID:        id.UID,
		Email:     id.Email,
		Name:      name,
		Role:      entity.RoleBuyer,
		CreatedAt: uc.now(),
	}
	if id.PhotoURL != "" {
		photo := id.PhotoURL
		fallback.PhotoURL = &photo
	}

	if !errors.IsNotFound(err) {
		logger.Error("Failed to load profile %s, using identity data: %v", id.UID, err)
		return fallback
	}

	if !uc.saveProfile(ctx, fallback) {
		logger.Warn("Could not create profile for %s", id.UID)
	}
	return fallback
}

// saveProfile writes the profile, reads it back, and retries the pair once if
// either step fails.
func (uc *AuthUseCase) saveProfile(ctx context.Context, user *entity.User) bool {
	for attempt := 1; attempt <= 2; attempt++ {
		if err := uc.userRepo.Save(ctx, user, true); err != nil {
			logger.Warn("Saving profile %s failed (attempt %d): %v", user.ID, attempt, err)
			continue
		}
		if _, err := uc.userRepo.GetByID(ctx, user.ID); err != nil {
			logger.Warn("Profile %s not readable after save (attempt %d): %v", user.ID, attempt, err)
			continue
		}
		return true
	}
	return false
}

func authError(err error) error {
	var authErr *service.AuthError
	if !stderrors.As(err, &authErr) {
		return errors.Internal(defaultAuthMessage, err)
	}

	code := strings.ToUpper(authErr.Code)
	message := AuthMessage(code)
	switch code {
	case "EMAIL_EXISTS":
		return errors.Conflict(message)
	case "TOO_MANY_ATTEMPTS_TRY_LATER", "TOO_MANY_REQUESTS":
		return errors.TooManyRequests(message, err)
	case "INVALID_EMAIL", "WEAK_PASSWORD":
		return errors.BadRequest(message, err)
	case "NETWORK_ERROR":
		return errors.Unavailable("Network error. Please check your connection and try again", err)
	}
	return errors.Unauthorized(message, err)
}
