package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goliatone/go-identity/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderAuthCodeURL(t *testing.T) {
	provider := New(Config{
		ClientID:    "app-id",
		CallbackURL: "https://example.com/callback",
	})

	authURL := provider.AuthCodeURL("state-token")

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "https://example.com/callback", query.Get("redirect_uri"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Contains(t, query.Get("scope"), "email")
}

func TestProviderExchangeAndUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			query := r.URL.Query()
			assert.Equal(t, "app-id", query.Get("client_id"))
			assert.Equal(t, "app-secret", query.Get("client_secret"))
			assert.Equal(t, "auth-code", query.Get("code"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "token",
				"token_type":   "bearer",
				"expires_in":   5183944,
			})
		case "/me":
			query := r.URL.Query()
			assert.Equal(t, "token", query.Get("access_token"))
			assert.Contains(t, query.Get("fields"), "email")

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":    "fb-1",
				"name":  "User Example",
				"email": "user@example.com",
				"picture": map[string]any{
					"data": map[string]any{
						"url": "https://example.com/avatar.png",
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := New(Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		CallbackURL:  "https://example.com/callback",
		TokenURL:     server.URL + "/token",
		UserInfoURL:  server.URL + "/me",
	})

	token, err := provider.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "token", token.AccessToken)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	profile, err := provider.UserInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "fb-1", profile.ProviderUserID)
	assert.Equal(t, "facebook", profile.Provider)
	assert.Equal(t, "user@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "https://example.com/avatar.png", profile.AvatarURL)
}

func TestProviderUserInfoWithoutEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "fb-2",
			"name": "No Email",
		})
	}))
	defer server.Close()

	provider := New(Config{UserInfoURL: server.URL})

	profile, err := provider.UserInfo(context.Background(), &social.Token{AccessToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, "fb-2", profile.ProviderUserID)
	assert.Empty(t, profile.Email)
	assert.False(t, profile.EmailVerified)
}

func TestProviderExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Invalid verification code format.",
				"type":    "OAuthException",
				"code":    100,
			},
		})
	}))
	defer server.Close()

	provider := New(Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		TokenURL:     server.URL,
	})

	_, err := provider.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid verification code format.")
}
