package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the compact claims payload carried by a session token:
// the user id, a snapshot of the user's revocation counter, and the
// registered issued-at/expiry pair.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID          string `json:"uid"`
	TokenVersion int    `json:"token_version"`
}

// UserID returns the user id, falling back to the subject claim
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Version returns the revocation counter snapshot embedded at issuance
func (c *SessionClaims) Version() int {
	return c.TokenVersion
}

// IssuedTime returns the issued at time
func (c *SessionClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiryTime returns the expiration time
func (c *SessionClaims) ExpiryTime() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Age reports how long ago the token was issued
func (c *SessionClaims) Age(now time.Time) time.Duration {
	issued := c.IssuedTime()
	if issued.IsZero() {
		return 0
	}
	return now.Sub(issued)
}
