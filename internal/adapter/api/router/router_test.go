package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satvik8373/Rentieo/internal/adapter/api"
	"github.com/satvik8373/Rentieo/internal/adapter/api/handler"
	"github.com/satvik8373/Rentieo/internal/adapter/api/middleware"
	"github.com/satvik8373/Rentieo/internal/adapter/repository"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/infrastructure/memstore"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/internal/infrastructure/storage"
	"github.com/satvik8373/Rentieo/internal/usecase"
)

// tokenIdentity accepts "token-<uid>" bearer tokens and signs everyone in as
// the uid before the @ of their email.
type tokenIdentity struct{}

func (tokenIdentity) issue(uid, email string) *service.Identity {
	return &service.Identity{UID: uid, Email: email, DisplayName: uid, IDToken: "token-" + uid}
}

func (p tokenIdentity) SignInWithPassword(ctx context.Context, email, password string) (*service.Identity, error) {
	if password != "secret" {
		return nil, &service.AuthError{Code: "INVALID_PASSWORD"}
	}
	return p.issue(strings.Split(email, "@")[0], email), nil
}

func (p tokenIdentity) SignUpWithPassword(ctx context.Context, email, password, displayName string) (*service.Identity, error) {
	id := p.issue(strings.Split(email, "@")[0], email)
	id.DisplayName = displayName
	id.IsNewUser = true
	return id, nil
}

func (p tokenIdentity) SignInWithIDP(ctx context.Context, providerIDToken string) (*service.Identity, error) {
	return p.issue("google-user", "google@example.com"), nil
}

func (p tokenIdentity) SignInAnonymously(ctx context.Context) (*service.Identity, error) {
	id := p.issue("guest-1", "")
	id.IsAnonymous = true
	return id, nil
}

func (p tokenIdentity) VerifyIDToken(ctx context.Context, idToken string) (*service.Identity, error) {
	if !strings.HasPrefix(idToken, "token-") {
		return nil, &service.AuthError{Code: "INVALID_ID_TOKEN"}
	}
	uid := strings.TrimPrefix(idToken, "token-")
	return p.issue(uid, uid+"@example.com"), nil
}

type testServer struct {
	e        *echo.Echo
	store    *memstore.Store
	userRepo interface {
		Save(ctx context.Context, user *entity.User, merge bool) error
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memstore.New()
	userRepo := repository.NewUserRepository(store)
	listingRepo := repository.NewListingRepository(store)
	chatRepo := repository.NewChatRepository(store)
	objects := storage.NewMemoryStore()
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ratelimit.ActionSignIn: ratelimit.PerMinute(3),
	})

	authUseCase := usecase.NewAuthUseCase(tokenIdentity{}, userRepo)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo, objects)
	chatUseCase := usecase.NewChatUseCase(chatRepo, limiter)
	mediaUseCase := usecase.NewMediaUseCase(objects, "listings", 5)

	handler.Setup(authUseCase, listingUseCase, chatUseCase, mediaUseCase)
	handler.SetupHealthHandler("memory", nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, middleware.NewAuthMiddleware(authUseCase), middleware.NewAdminMiddleware(userRepo), limiter)

	return &testServer{e: e, store: store, userRepo: userRepo}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, uid string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer token-"+uid)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type listingList struct {
	Items []entity.Listing `json:"items"`
	Total int              `json:"total"`
}

func (s *testServer) createListing(t *testing.T, uid, title string) entity.Listing {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/v1/listings", uid, map[string]interface{}{
		"title":    title,
		"price":    25,
		"category": "electronics",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[entity.Listing](t, env.Data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"memory"`)
}

func TestListings_RequireAuthToCreate(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/listings", "", map[string]interface{}{"title": "Bike"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestListings_ValidationError(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/listings", "alice", map[string]interface{}{"price": 10})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "title is required", env.Error.Message)
}

func TestListings_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t, "alice", "Camera")
	assert.Equal(t, entity.CategoryElectronics, listing.Category)
	assert.True(t, listing.IsActive)

	rec, env := s.do(t, http.MethodGet, "/v1/listings?q=camera", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listingList](t, env.Data)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, listing.ID, list.Items[0].ID)

	// A view from someone other than the owner is counted.
	rec, env = s.do(t, http.MethodGet, "/v1/listings/"+listing.ID, "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[entity.Listing](t, env.Data).Views)

	rec, env = s.do(t, http.MethodPatch, "/v1/listings/"+listing.ID, "bob", map[string]interface{}{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, env = s.do(t, http.MethodPatch, "/v1/listings/"+listing.ID, "alice", map[string]interface{}{"price": 30})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), decode[entity.Listing](t, env.Data).Price)

	rec, _ = s.do(t, http.MethodPut, "/v1/listings/"+listing.ID+"/active", "alice", map[string]interface{}{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = s.do(t, http.MethodGet, "/v1/listings", "", nil)
	assert.Equal(t, 0, decode[listingList](t, env.Data).Total)
}

func TestListings_ToggleSaved(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t, "alice", "Tent")

	rec, env := s.do(t, http.MethodPut, "/v1/listings/"+listing.ID+"/saved", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"saved": true}, decode[map[string]bool](t, env.Data))

	_, env = s.do(t, http.MethodGet, "/v1/listings/saved", "bob", nil)
	assert.Equal(t, 1, decode[listingList](t, env.Data).Total)

	_, env = s.do(t, http.MethodPut, "/v1/listings/"+listing.ID+"/saved", "bob", nil)
	assert.Equal(t, map[string]bool{"saved": false}, decode[map[string]bool](t, env.Data))
}

func TestListings_BadNumberParam(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/v1/listings?min_price=cheap", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "min_price must be a number", env.Error.Message)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t, "alice", "Sofa")
	s.do(t, http.MethodPut, "/v1/listings/"+listing.ID+"/active", "alice", map[string]interface{}{"active": false})

	rec, _ := s.do(t, http.MethodGet, "/v1/admin/listings", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, s.userRepo.Save(context.Background(), &entity.User{ID: "root", Name: "Root", Role: entity.RoleAdmin}, false))

	rec, env := s.do(t, http.MethodGet, "/v1/admin/listings", "root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listingList](t, env.Data)
	require.Equal(t, 1, list.Total)
	assert.False(t, list.Items[0].IsActive)

	rec, _ = s.do(t, http.MethodDelete, "/v1/admin/listings/"+listing.ID, "root", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.store.Count("listings"))
}

func TestChats_CreateAndSend(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/chats", "alice", map[string]interface{}{"recipient_id": "bob", "listing_id": "l1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	room := decode[entity.ChatRoom](t, env.Data)
	assert.Equal(t, entity.RoomID("alice", "bob", "l1"), room.ID)

	// The other side resolves to the same room.
	_, env = s.do(t, http.MethodPost, "/v1/chats", "bob", map[string]interface{}{"recipient_id": "alice", "listing_id": "l1"})
	assert.Equal(t, room.ID, decode[entity.ChatRoom](t, env.Data).ID)

	rec, env = s.do(t, http.MethodPost, "/v1/chats/"+room.ID+"/messages", "alice", map[string]interface{}{"message": "Still available?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decode[entity.ChatMessage](t, env.Data)
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, entity.MessageTypeText, msg.Type)

	rec, _ = s.do(t, http.MethodPost, "/v1/chats/"+room.ID+"/messages", "carol", map[string]interface{}{"message": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_GuestAndMe(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[usecase.AuthResult](t, env.Data)
	assert.Equal(t, "token-guest-1", result.Token)

	rec, env = s.do(t, http.MethodGet, "/v1/auth/me", "guest-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest-1", decode[entity.User](t, env.Data).ID)
}

func TestAuth_LoginFailureMessage(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]interface{}{"email": "a@example.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect password", env.Error.Message)
}

func TestAuth_SignInRateLimited(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{"email": "a@example.com", "password": "secret"}

	for i := 0; i < 3; i++ {
		rec, _ := s.do(t, http.MethodPost, "/v1/auth/login", "", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := s.do(t, http.MethodPost, "/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestFiles_UploadImages(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="files"; filename="photo.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/files/images", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer token-alice")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	result := decode[usecase.UploadResult](t, env.Data)
	require.Len(t, result.URLs, 1)
	assert.True(t, strings.HasPrefix(result.URLs[0], "memory://listings/alice/"))
}

func TestListings_Paging(t *testing.T) {
	s := newTestServer(t)
	for _, title := range []string{"Drill", "Ladder", "Saw"} {
		s.createListing(t, "alice", title)
	}

	_, env := s.do(t, http.MethodGet, "/v1/listings?limit=2", "", nil)
	first := decode[listingList](t, env.Data)
	assert.Equal(t, 3, first.Total)
	assert.Len(t, first.Items, 2)

	_, env = s.do(t, http.MethodGet, "/v1/listings?limit=2&page=2", "", nil)
	second := decode[listingList](t, env.Data)
	require.Len(t, second.Items, 1)
	assert.NotContains(t, []string{first.Items[0].ID, first.Items[1].ID}, second.Items[0].ID)
}
