package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var sessionCtxKey = &contextKey{"session"}
var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithSessionContext sets the SessionObject in the given context
func WithSessionContext(ctx context.Context, session *SessionObject) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session identity from the context
func SessionFromContext(ctx context.Context) (*SessionObject, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*SessionObject)
	return raw, ok && raw != nil
}

// WithUserContext sets the User in the given context
func WithUserContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// SessionFromRouterContext extracts the session the middleware stored in
// the router locals. Missing locals mean the request is unauthenticated.
func SessionFromRouterContext(c router.Context, key string) (*SessionObject, bool) {
	if key == "" {
		key = "session"
	}

	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}

	session, ok := raw.(*SessionObject)
	return session, ok && session != nil
}
