package usecase

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/satvik8373/Rentieo/internal/domain/service"
)

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, folder, filename, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) identity(args mock.Arguments) (*service.Identity, error) {
	if id, ok := args.Get(0).(*service.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*service.Identity, error) {
	return m.identity(m.Called(ctx, email, password))
}

func (m *mockIdentityProvider) SignUpWithPassword(ctx context.Context, email, password, displayName string) (*service.Identity, error) {
	return m.identity(m.Called(ctx, email, password, displayName))
}

func (m *mockIdentityProvider) SignInWithIDP(ctx context.Context, providerIDToken string) (*service.Identity, error) {
	return m.identity(m.Called(ctx, providerIDToken))
}

func (m *mockIdentityProvider) SignInAnonymously(ctx context.Context) (*service.Identity, error) {
	return m.identity(m.Called(ctx))
}

func (m *mockIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*service.Identity, error) {
	return m.identity(m.Called(ctx, idToken))
}
