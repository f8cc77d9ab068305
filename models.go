package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleClient is the default role assigned at signup
	RoleClient UserRole = "client"
	// RoleItemEditor can manage catalog items
	RoleItemEditor UserRole = "itemEditor"
	// RoleAdmin can manage most resources
	RoleAdmin UserRole = "admin"
	// RoleSuperAdmin can manage roles and delete accounts
	RoleSuperAdmin UserRole = "superAdmin"
)

// User is the user model. TokenVersion is the per user revocation
// counter: a session token is only honored for authenticated mutations
// while its embedded version matches this column.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	TokenVersion  int        `bun:"token_version,notnull,default:0" json:"-"`
	Roles         []UserRole `bun:"roles,array" json:"roles,omitempty"`
	FacebookID    string     `bun:"facebook_id,nullzero" json:"-"`
	GoogleID      string     `bun:"google_id,nullzero" json:"-"`

	ResetPasswordToken  string     `bun:"reset_password_token,nullzero" json:"-"`
	ResetPasswordExpiry *time.Time `bun:"reset_password_expiry,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasRole checks membership in the user's role set
func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the user may administer roles and accounts
func (u *User) IsSuperAdmin() bool {
	return u.HasRole(RoleSuperAdmin)
}

// HasLocalPassword reports whether the account can authenticate with a
// password. Accounts created through a social provider store the provider
// name as a sentinel, which bcrypt verification will never match.
func (u *User) HasLocalPassword() bool {
	return u.PasswordHash != "" && !isProviderSentinel(u.PasswordHash)
}

// ProviderID returns the stored external id for a provider, if any
func (u *User) ProviderID(provider string) string {
	switch provider {
	case ProviderFacebook:
		return u.FacebookID
	case ProviderGoogle:
		return u.GoogleID
	default:
		return ""
	}
}

// SetProviderID binds an external provider identity to the user
func (u *User) SetProviderID(provider, providerUserID string) {
	switch provider {
	case ProviderFacebook:
		u.FacebookID = providerUserID
	case ProviderGoogle:
		u.GoogleID = providerUserID
	}
}

// Supported external identity providers.
const (
	ProviderFacebook = "facebook"
	ProviderGoogle   = "google"
)

func isProviderSentinel(hash string) bool {
	return hash == ProviderFacebook || hash == ProviderGoogle
}
