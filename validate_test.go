package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload auth.SignupRequest
		wantErr bool
	}{
		{
			name: "valid payload",
			payload: auth.SignupRequest{
				Username: "peperone",
				Email:    "pep@example.com",
				Password: "secret123",
			},
			wantErr: false,
		},
		{
			name: "valid payload with phone",
			payload: auth.SignupRequest{
				Username: "peperone",
				Email:    "pep@example.com",
				Password: "secret123",
				Phone:    "+1 (212) 555-0199",
			},
			wantErr: false,
		},
		{
			name: "missing username",
			payload: auth.SignupRequest{
				Email:    "pep@example.com",
				Password: "secret123",
			},
			wantErr: true,
		},
		{
			name: "username too short",
			payload: auth.SignupRequest{
				Username: "pe",
				Email:    "pep@example.com",
				Password: "secret123",
			},
			wantErr: true,
		},
		{
			name: "invalid email",
			payload: auth.SignupRequest{
				Username: "peperone",
				Email:    "not-an-email",
				Password: "secret123",
			},
			wantErr: true,
		},
		{
			name: "password too short",
			payload: auth.SignupRequest{
				Username: "peperone",
				Email:    "pep@example.com",
				Password: "abc",
			},
			wantErr: true,
		},
		{
			name: "invalid phone",
			payload: auth.SignupRequest{
				Username: "peperone",
				Email:    "pep@example.com",
				Password: "secret123",
				Phone:    "not-a-phone",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()

			if tt.wantErr {
				require.NotNil(t, err)
				assert.NotEmpty(t, err.Message)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestSigninRequestValidate(t *testing.T) {
	valid := auth.SigninRequest{
		Email:    "pep@example.com",
		Password: "secret123",
	}
	assert.Nil(t, valid.Validate())

	missingEmail := auth.SigninRequest{Password: "secret123"}
	assert.NotNil(t, missingEmail.Validate())

	missingPassword := auth.SigninRequest{Email: "pep@example.com"}
	assert.NotNil(t, missingPassword.Validate())
}

func TestNormalizePhone(t *testing.T) {
	t.Run("empty passes through", func(t *testing.T) {
		out, err := auth.NormalizePhone("", "US")
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("US number normalizes to E.164", func(t *testing.T) {
		out, err := auth.NormalizePhone("(212) 555-0199", "US")
		require.NoError(t, err)
		assert.Equal(t, "+12125550199", out)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := auth.NormalizePhone("hello", "US")
		assert.Error(t, err)
	})

	t.Run("impossible number is rejected", func(t *testing.T) {
		_, err := auth.NormalizePhone("123", "US")
		assert.Error(t, err)
	})
}
