package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Authenticator is the credential-facing surface of the package: password
// logins, session revocation, and resolving a session back to its user.
type Authenticator interface {
	Signin(ctx context.Context, email, password string) (string, error)
	Signout(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, session *SessionObject) (*User, error)
}

type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator backed by the given
// repositories and token service.
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Signin verifies the email and password pair and returns a signed
// session token minted at the user's current token version. Unknown
// emails and bad passwords produce the same client-facing error.
func (s *Auther) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Info("Signin for unknown email", "email", email)
			return "", ErrIdentityNotFound
		}
		s.logger.Error("Signin lookup error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("Signin password mismatch", "email", email)
		return "", err
	}

	token, err := s.tokenService.Issue(user.ID.String(), user.TokenVersion)
	if err != nil {
		s.logger.Error("Signin token issue error", "error", err)
		return "", err
	}

	return token, nil
}

// Signout revokes every outstanding session for the user by advancing
// the token version. A missing user is treated as already signed out.
func (s *Auther) Signout(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user identifier").
			WithMetadata(map[string]any{"user_id": userID})
	}

	user, err := s.repo.Users().Get(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for signout")
	}

	if _, err := s.repo.Users().BumpTokenVersion(ctx, user.ID, user.TokenVersion); err != nil {
		if repository.IsRecordNotFound(err) {
			// lost a rotation race, the version moved which is what we wanted
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke user sessions")
	}

	return nil
}

// CurrentUser resolves the session to its user record, rejecting the
// session when its embedded version no longer matches the stored one.
func (s *Auther) CurrentUser(ctx context.Context, session *SessionObject) (*User, error) {
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.repo.Users().Get(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve session user")
	}

	if user.TokenVersion != session.GetTokenVersion() {
		s.logger.Info(
			"Session rejected on version mismatch",
			"user_id", user.ID.String(),
			"session_version", session.GetTokenVersion(),
			"current_version", user.TokenVersion,
		)
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

// SessionFromToken validates a raw token and converts its claims into
// a SessionObject. Validation failures surface as rich errors.
func (s *Auther) SessionFromToken(raw string) (*SessionObject, error) {
	claims, err := s.tokenService.Verify(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromClaims(claims), nil
}
