package auth

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// SessionContextKey is the router locals key the middleware stores the
// SessionObject under.
const SessionContextKey = "session"

type SessionMiddlewareConfig struct {
	Repo         RepositoryManager
	TokenService TokenService
	Config       Config
	Logger       Logger
	// ContextKey overrides the locals key, defaults to SessionContextKey
	ContextKey string
	Filter     func(router.Context) bool
}

// NewSessionMiddleware attaches the request's session identity before
// every handler. It never rejects a request: a missing or failing token
// leaves the request unauthenticated and the handler chain decides what
// that means.
//
// Tokens older than the rotation threshold are reissued in place: the
// stored version is advanced, a fresh cookie is set and the request
// proceeds with the new version. Any failure along the rotation path is
// swallowed and the identity from the original token is kept.
func NewSessionMiddleware(config SessionMiddlewareConfig) router.MiddlewareFunc {
	logger := config.Logger
	if logger == nil {
		logger = defLogger{}
	}

	contextKey := config.ContextKey
	if contextKey == "" {
		contextKey = SessionContextKey
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if config.Filter != nil && config.Filter(ctx) {
				return ctx.Next()
			}

			raw := ctx.Cookies(config.Config.GetCookieName())
			outcome := EvaluateToken(config.TokenService, raw)

			if !outcome.Authenticated {
				return ctx.Next()
			}

			session := outcome.Session

			if issued := session.GetIssuedAt(); issued != nil {
				if IsOutsideThresholdPeriod(*issued, config.Config.GetRotationThreshold()) {
					if rotated := rotateSession(ctx, config, logger, session); rotated != nil {
						session = rotated
					}
				}
			}

			ctx.Locals(contextKey, session)
			ctx.SetContext(WithSessionContext(ctx.Context(), session))

			return ctx.Next()
		}
	}
}

// rotateSession advances the stored token version and reissues the
// cookie. Returns nil when rotation could not complete, in which case
// the caller keeps the identity from the original token.
func rotateSession(ctx router.Context, config SessionMiddlewareConfig, logger Logger, session *SessionObject) *SessionObject {
	id, err := session.GetUserUUID()
	if err != nil {
		logger.Warn("Session rotation skipped, bad user id", "user_id", session.GetUserID())
		return nil
	}

	user, err := config.Repo.Users().Get(ctx.Context(), id)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			logger.Warn("Session rotation lookup failed", "error", err)
		}
		return nil
	}

	if user.TokenVersion != session.GetTokenVersion() {
		// already revoked or rotated elsewhere, do not resurrect it
		return nil
	}

	updated, err := config.Repo.Users().BumpTokenVersion(ctx.Context(), user.ID, user.TokenVersion)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			logger.Warn("Session rotation bump failed", "error", err)
		}
		return nil
	}

	token, err := config.TokenService.Issue(updated.ID.String(), updated.TokenVersion)
	if err != nil {
		logger.Warn("Session rotation token issue failed", "error", err)
		return nil
	}

	setCookieToken(ctx, config.Config, token)

	claims, err := config.TokenService.Verify(token)
	if err != nil {
		logger.Warn("Session rotation verify failed", "error", err)
		return nil
	}

	logger.Debug(
		"Session rotated",
		"user_id", updated.ID.String(),
		"version", updated.TokenVersion,
	)

	return sessionFromClaims(claims)
}
