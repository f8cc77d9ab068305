package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	for _, role := range auth.GetAllRoles() {
		assert.True(t, auth.IsValidRole(role), "expected %s to be valid", role)
	}

	assert.False(t, auth.IsValidRole("owner"))
	assert.False(t, auth.IsValidRole(""))
}

func TestValidRoles(t *testing.T) {
	assert.True(t, auth.ValidRoles([]auth.UserRole{auth.RoleClient}))
	assert.True(t, auth.ValidRoles([]auth.UserRole{auth.RoleAdmin, auth.RoleSuperAdmin}))

	assert.False(t, auth.ValidRoles(nil))
	assert.False(t, auth.ValidRoles([]auth.UserRole{}))
	assert.False(t, auth.ValidRoles([]auth.UserRole{auth.RoleClient, "owner"}))
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     auth.UserRole
		minRole  auth.UserRole
		expected bool
	}{
		{auth.RoleClient, auth.RoleClient, true},
		{auth.RoleItemEditor, auth.RoleClient, true},
		{auth.RoleAdmin, auth.RoleItemEditor, true},
		{auth.RoleSuperAdmin, auth.RoleAdmin, true},
		{auth.RoleClient, auth.RoleItemEditor, false},
		{auth.RoleAdmin, auth.RoleSuperAdmin, false},
		{"owner", auth.RoleClient, false},
		{auth.RoleClient, "owner", false},
	}

	for _, tt := range tests {
		got := auth.RoleAtLeast(tt.role, tt.minRole)
		assert.Equal(t, tt.expected, got, "RoleAtLeast(%s, %s)", tt.role, tt.minRole)
	}
}

func TestHighestRole(t *testing.T) {
	assert.Equal(t, auth.RoleClient, auth.HighestRole(nil))
	assert.Equal(t, auth.RoleClient, auth.HighestRole([]auth.UserRole{"owner"}))
	assert.Equal(t, auth.RoleAdmin, auth.HighestRole([]auth.UserRole{auth.RoleClient, auth.RoleAdmin}))
	assert.Equal(t, auth.RoleSuperAdmin, auth.HighestRole([]auth.UserRole{auth.RoleSuperAdmin, auth.RoleItemEditor}))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("owner")
	assert.False(t, ok)
}

func TestDefaultRoles(t *testing.T) {
	assert.Equal(t, []auth.UserRole{auth.RoleClient}, auth.DefaultRoles())
}
