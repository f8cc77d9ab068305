package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionObject is the request scoped identity attached by the session
// middleware for downstream operations to consume.
type SessionObject struct {
	UserID       string     `json:"user_id,omitempty"`
	TokenVersion int        `json:"token_version"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetTokenVersion() int {
	return s.TokenVersion
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s v=%d iat=%s", s.UserID, s.TokenVersion, issuedAt)
}

// Outcome is the result of evaluating an inbound token. The middleware
// fails open: every verification failure collapses into Unauthenticated
// rather than surfacing an error to the handler chain.
type Outcome struct {
	Authenticated bool
	Session       *SessionObject
}

// Unauthenticated is the outcome for absent, malformed, expired or
// tampered tokens.
var Unauthenticated = Outcome{}

// Authenticated wraps verified claims into an affirmative outcome
func Authenticated(claims *SessionClaims) Outcome {
	session := sessionFromClaims(claims)
	if session == nil {
		return Unauthenticated
	}
	return Outcome{
		Authenticated: true,
		Session:       session,
	}
}

// EvaluateToken is the pure verification step behind the middleware:
// no token or a failing token yields Unauthenticated, a valid one
// yields the attached session identity.
func EvaluateToken(ts TokenService, raw string) Outcome {
	if raw == "" {
		return Unauthenticated
	}

	claims, err := ts.Verify(raw)
	if err != nil {
		return Unauthenticated
	}

	return Authenticated(claims)
}

func sessionFromClaims(claims *SessionClaims) *SessionObject {
	if claims == nil {
		return nil
	}

	session := &SessionObject{
		UserID:       claims.UserID(),
		TokenVersion: claims.Version(),
	}

	if issued := claims.IssuedTime(); !issued.IsZero() {
		session.IssuedAt = &issued
	}
	if expires := claims.ExpiryTime(); !expires.IsZero() {
		session.ExpiresAt = &expires
	}

	return session
}
