package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	return m.Called().Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return m.Called(ctx, opts, f).Error(0)
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.Called().Get(0).(auth.Users)
}

// MockUsers mocks the query surface of auth.Users. The embedded
// interface covers the generic repository methods nothing here calls.
type MockUsers struct {
	auth.Users
	mock.Mock
}

func (m *MockUsers) Get(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return userReturn(m.Called(ctx, id))
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return userReturn(m.Called(ctx, email))
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	return userReturn(m.Called(ctx, tx, email))
}

func (m *MockUsers) GetByResetToken(ctx context.Context, token string) (*auth.User, error) {
	return userReturn(m.Called(ctx, token))
}

func (m *MockUsers) GetByProviderID(ctx context.Context, provider, providerUserID string) (*auth.User, error) {
	return userReturn(m.Called(ctx, provider, providerUserID))
}

func (m *MockUsers) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerUserID string) (*auth.User, error) {
	return userReturn(m.Called(ctx, id, provider, providerUserID))
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return userReturn(m.Called(ctx, user))
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	return userReturn(m.Called(ctx, tx, user))
}

func (m *MockUsers) BumpTokenVersion(ctx context.Context, id uuid.UUID, fromVersion int) (*auth.User, error) {
	return userReturn(m.Called(ctx, id, fromVersion))
}

func (m *MockUsers) BumpTokenVersionTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fromVersion int) (*auth.User, error) {
	return userReturn(m.Called(ctx, tx, id, fromVersion))
}

func (m *MockUsers) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	return m.Called(ctx, id, token, expiry).Error(0)
}

func (m *MockUsers) ClearResetTokenAndSetPassword(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, tx, id, passwordHash).Error(0)
}

func (m *MockUsers) UpdateRoles(ctx context.Context, id uuid.UUID, roles []auth.UserRole) (*auth.User, error) {
	return userReturn(m.Called(ctx, id, roles))
}

func (m *MockUsers) Remove(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUsers) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	var users []*auth.User
	if v := args.Get(0); v != nil {
		users = v.([]*auth.User)
	}
	return users, args.Error(1)
}

func userReturn(args mock.Arguments) (*auth.User, error) {
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg auth.MailMessage) error {
	return m.Called(ctx, msg).Error(0)
}
