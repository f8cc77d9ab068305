package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndVerify(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * 24 * time.Hour

	ts := auth.NewTokenService([]byte("test-signing-key"), ttl, "identity.test", testLogger{}).
		WithClock(func() time.Time { return issued })

	token, err := ts.Issue("6c1ffad2-fd6c-41ba-8b9b-92ba0cb8a15f", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "6c1ffad2-fd6c-41ba-8b9b-92ba0cb8a15f", claims.UserID())
	assert.Equal(t, 3, claims.Version())
	assert.True(t, claims.IssuedTime().Equal(issued))
	assert.True(t, claims.ExpiryTime().Equal(issued.Add(ttl)))
}

func TestTokenServiceVerifyExpired(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	ts := auth.NewTokenService([]byte("test-signing-key"), ttl, "identity.test", testLogger{}).
		WithClock(func() time.Time { return issued })

	token, err := ts.Issue("user-1", 0)
	require.NoError(t, err)

	ts.WithClock(func() time.Time { return issued.Add(ttl + time.Minute) })

	_, err = ts.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenServiceVerifyWrongKey(t *testing.T) {
	issuing := auth.NewTokenService([]byte("key-one"), time.Hour, "identity.test", testLogger{})
	verifying := auth.NewTokenService([]byte("key-two"), time.Hour, "identity.test", testLogger{})

	token, err := issuing.Issue("user-1", 0)
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenSignature)
}

func TestTokenServiceVerifyTampered(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	token, err := ts.Issue("user-1", 0)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"

	_, err = ts.Verify(tampered)
	require.Error(t, err)
}

func TestTokenServiceVerifyMalformed(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	cases := []string{
		"not-a-token",
		"a.b.c",
		"",
	}

	for _, raw := range cases {
		_, err := ts.Verify(raw)
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err), "expected malformed error for %q", raw)
	}
}

func TestTokenServiceVerifyWrongIssuer(t *testing.T) {
	issuing := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.other", testLogger{})
	verifying := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "identity.test", testLogger{})

	token, err := issuing.Issue("user-1", 0)
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	require.Error(t, err)
}
