package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContextRoundTrip(t *testing.T) {
	session := &auth.SessionObject{UserID: uuid.NewString(), TokenVersion: 1}

	ctx := auth.WithSessionContext(context.Background(), session)

	got, ok := auth.SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, session, got)
}

func TestSessionFromContextMissing(t *testing.T) {
	_, ok := auth.SessionFromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithSessionContext(context.Background(), nil)
	_, ok = auth.SessionFromContext(ctx)
	assert.False(t, ok)
}

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.User{ID: uuid.New()}

	ctx := auth.WithUserContext(context.Background(), user)

	got, ok := auth.UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = auth.UserFromContext(context.Background())
	assert.False(t, ok)
}
