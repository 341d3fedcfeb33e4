package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// adminClient is the part of *auth.Client this package relies on.
type adminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

// FirebaseAuthClient verifies tokens with the Admin SDK and performs end-user
// sign-in through the Identity Toolkit REST API, which the Admin SDK does not
// expose.
type FirebaseAuthClient struct {
	client     adminClient
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*FirebaseAuthClient)

// WithBaseURL points sign-in calls at another Identity Toolkit endpoint, such
// as the local emulator.
func WithBaseURL(baseURL string) Option {
	return func(f *FirebaseAuthClient) { f.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *FirebaseAuthClient) { f.httpClient = client }
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string, opts ...Option) *FirebaseAuthClient {
	var admin adminClient
	if client != nil {
		admin = client
	}
	return newAuthClient(admin, apiKey, opts...)
}

func newAuthClient(admin adminClient, apiKey string, opts ...Option) *FirebaseAuthClient {
	f := &FirebaseAuthClient{
		client:     admin,
		apiKey:     apiKey,
		baseURL:    defaultIdentityToolkitURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	IsNewUser    bool   `json:"isNewUser"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuthClient) SignInWithPassword(ctx context.Context, email, password string) (*service.Identity, error) {
	resp, err := f.call(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return resp.identity(false), nil
}

func (f *FirebaseAuthClient) SignUpWithPassword(ctx context.Context, email, password, displayName string) (*service.Identity, error) {
	resp, err := f.call(ctx, "accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	identity := resp.identity(false)
	identity.IsNewUser = true

	if displayName != "" {
		identity.DisplayName = displayName
		if f.client != nil {
			params := (&auth.UserToUpdate{}).DisplayName(displayName)
			if _, err := f.client.UpdateUser(ctx, identity.UID, params); err != nil {
				logger.Warn("Failed to set display name for %s: %v", identity.UID, err)
			}
		}
	}
	return identity, nil
}

func (f *FirebaseAuthClient) SignInWithIDP(ctx context.Context, providerIDToken string) (*service.Identity, error) {
	postBody := url.Values{}
	postBody.Set("id_token", providerIDToken)
	postBody.Set("providerId", "google.com")

	resp, err := f.call(ctx, "accounts:signInWithIdp", map[string]interface{}{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	})
	if err != nil {
		return nil, err
	}
	return resp.identity(false), nil
}

func (f *FirebaseAuthClient) SignInAnonymously(ctx context.Context) (*service.Identity, error) {
	resp, err := f.call(ctx, "accounts:signUp", map[string]interface{}{
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	identity := resp.identity(true)
	identity.IsNewUser = true
	return identity, nil
}

func (f *FirebaseAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*service.Identity, error) {
	if f.client == nil {
		return nil, &service.AuthError{Code: "ADMIN_UNAVAILABLE", Err: fmt.Errorf("firebase admin client not configured")}
	}

	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, &service.AuthError{Code: "INVALID_ID_TOKEN", Err: err}
	}

	identity := &service.Identity{
		UID:         token.UID,
		IDToken:     idToken,
		IsAnonymous: token.Firebase.SignInProvider == "anonymous",
	}
	if v, ok := token.Claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		identity.PhotoURL = v
	}
	return identity, nil
}

func (r *signInResponse) identity(anonymous bool) *service.Identity {
	return &service.Identity{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PhotoURL:     r.PhotoURL,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		IsAnonymous:  anonymous,
		IsNewUser:    r.IsNewUser,
	}
}

func (f *FirebaseAuthClient) call(ctx context.Context, method string, payload map[string]interface{}) (*signInResponse, error) {
	if f.apiKey == "" {
		return nil, &service.AuthError{Code: "API_KEY_MISSING", Err: fmt.Errorf("firebase api key not configured")}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", f.baseURL, method, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &service.AuthError{Code: "NETWORK_ERROR", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &service.AuthError{Code: "NETWORK_ERROR", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return nil, &service.AuthError{Code: "UNKNOWN", Err: fmt.Errorf("identity toolkit %s: status %d", method, resp.StatusCode)}
		}
		return nil, &service.AuthError{
			Code: errorCode(errResp.Error.Message),
			Err:  fmt.Errorf("identity toolkit %s: %s", method, errResp.Error.Message),
		}
	}

	var out signInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	return &out, nil
}

// errorCode keeps the leading code of messages like
// "WEAK_PASSWORD : Password should be at least 6 characters".
func errorCode(message string) string {
	if idx := strings.IndexAny(message, " :"); idx > 0 {
		return message[:idx]
	}
	return message
}
