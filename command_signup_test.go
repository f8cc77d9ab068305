package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	auth "github.com/goliatone/go-identity"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestSignupHandlerCreatesUserAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	userID := uuid.New()
	created := &auth.User{
		ID:           userID,
		Username:     "peperone",
		Email:        "pep@example.com",
		Roles:        auth.DefaultRoles(),
		TokenVersion: 0,
	}

	repo.On("Users").Return(users).Twice()
	users.On("GetByEmailTx", mock.Anything, mock.Anything, "pep@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("RegisterTx", mock.Anything, mock.Anything, mock.AnythingOfType("*auth.User")).
		Return(created, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	var gotUser *auth.User
	var gotToken string

	handler := auth.NewSignupHandler(repo, ts).WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.SignupMessage{
		Username: "peperone",
		Email:    "pep@example.com",
		Password: "secret123",
		OnSignup: func(user *auth.User, token string) {
			gotUser = user
			gotToken = token
		},
	})
	require.NoError(t, err)

	require.NotNil(t, gotUser)
	assert.Equal(t, userID, gotUser.ID)
	assert.Equal(t, auth.DefaultRoles(), gotUser.Roles)
	assert.Equal(t, 0, gotUser.TokenVersion)

	claims, err := ts.Verify(gotToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID())
	assert.Equal(t, 0, claims.Version())

	repo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestSignupHandlerRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	existing := &auth.User{ID: uuid.New(), Email: "pep@example.com"}

	repo.On("Users").Return(users).Once()
	users.On("GetByEmailTx", mock.Anything, mock.Anything, "pep@example.com").
		Return(existing, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(auth.ErrDuplicateEmail).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			assert.ErrorIs(t, fn(args.Get(0).(context.Context), tx), auth.ErrDuplicateEmail)
		}).Once()

	handler := auth.NewSignupHandler(repo, ts).WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.SignupMessage{
		Username: "peperone",
		Email:    "pep@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	users.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignupHandlerMapsRacingUniqueViolation(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	storageErr := &mockUniqueViolation{}

	repo.On("Users").Return(users).Twice()
	users.On("GetByEmailTx", mock.Anything, mock.Anything, "pep@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, storageErr).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(auth.ErrDuplicateEmail).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			assert.ErrorIs(t, fn(args.Get(0).(context.Context), tx), auth.ErrDuplicateEmail)
		}).Once()

	handler := auth.NewSignupHandler(repo, ts).WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.SignupMessage{
		Username: "peperone",
		Email:    "pep@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestSignupHandlerValidatesPayload(t *testing.T) {
	repo := &MockRepositoryManager{}
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})
	handler := auth.NewSignupHandler(repo, ts).WithLogger(testLogger{})

	err := handler.Execute(context.Background(), auth.SignupMessage{
		Username: "peperone",
		Email:    "not-an-email",
		Password: "secret123",
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

type mockUniqueViolation struct{}

func (mockUniqueViolation) Error() string {
	return `duplicate key value violates unique constraint "users_email_unique"`
}
