package social_test

import (
	"context"

	auth "github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/social"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockUsers mocks the lookup surface the linker touches. The embedded
// interface covers the methods nothing here calls.
type mockUsers struct {
	auth.Users
	mock.Mock
}

func (m *mockUsers) GetByProviderID(ctx context.Context, provider, providerUserID string) (*auth.User, error) {
	return userReturn(m.Called(ctx, provider, providerUserID))
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return userReturn(m.Called(ctx, email))
}

func (m *mockUsers) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerUserID string) (*auth.User, error) {
	return userReturn(m.Called(ctx, id, provider, providerUserID))
}

// Register echoes the record it was handed unless the expectation
// provides a canned one.
func (m *mockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if v := args.Get(0); v != nil {
		return v.(*auth.User), args.Error(1)
	}
	return user, args.Error(1)
}

func userReturn(args mock.Arguments) (*auth.User, error) {
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

// fakeProvider is a canned in-memory Provider implementation.
type fakeProvider struct {
	name        string
	exchangeErr error
	userInfoErr error
	profile     *social.Profile
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.example.com/oauth?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &social.Token{AccessToken: "access-" + code}, nil
}

func (p *fakeProvider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	if p.userInfoErr != nil {
		return nil, p.userInfoErr
	}
	return p.profile, nil
}
