package service

import "context"

// Identity is a signed-in principal as reported by the identity provider.
type Identity struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	IDToken      string
	RefreshToken string
	IsAnonymous  bool
	IsNewUser    bool
}

// AuthError carries the provider's error code so callers can map it to a
// user-facing message.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
	SignUpWithPassword(ctx context.Context, email, password, displayName string) (*Identity, error)
	// SignInWithIDP exchanges a federated (Google) id token.
	SignInWithIDP(ctx context.Context, providerIDToken string) (*Identity, error)
	SignInAnonymously(ctx context.Context) (*Identity, error)
	// VerifyIDToken resolves a bearer token to the identity it was issued for.
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}
