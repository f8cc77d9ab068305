package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type UpdateRolesMessage struct {
	Actor      *SessionObject `json:"-"`
	UserID     string         `json:"user_id"`
	Roles      []UserRole     `json:"roles"`
	OnResponse func(user *User)
}

func (e UpdateRolesMessage) Type() string { return "user.update_roles" }

// UpdateRolesHandler replaces a user's role set. Only a superAdmin with
// a live session may execute it.
type UpdateRolesHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewUpdateRolesHandler(repo RepositoryManager) *UpdateRolesHandler {
	return &UpdateRolesHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *UpdateRolesHandler) WithLogger(logger Logger) *UpdateRolesHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *UpdateRolesHandler) Execute(ctx context.Context, event UpdateRolesMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during role update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateRolesHandler) execute(ctx context.Context, event UpdateRolesMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	actor, err := requireSuperAdmin(ctx, h.repo, event.Actor)
	if err != nil {
		return err
	}

	for _, role := range event.Roles {
		if !IsValidRole(role) {
			return goerrors.New("unknown role", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest).
				WithMetadata(map[string]any{"role": role})
		}
	}

	targetID, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user identifier").
			WithMetadata(map[string]any{"user_id": event.UserID})
	}

	user, err := h.repo.Users().UpdateRoles(ctx, targetID, event.Roles)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user roles")
	}

	h.logger.Info(
		"Roles updated",
		"actor", actor.ID.String(),
		"user", user.ID.String(),
	)

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

// requireSuperAdmin revalidates the acting session against the stored
// token version, then checks the role. A revoked session fails the
// authentication step before authorization is even considered.
func requireSuperAdmin(ctx context.Context, repo RepositoryManager, session *SessionObject) (*User, error) {
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	actor, err := repo.Users().Get(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve acting user")
	}

	if actor.TokenVersion != session.GetTokenVersion() {
		return nil, ErrNotAuthenticated
	}

	if !actor.IsSuperAdmin() {
		return nil, ErrNotAuthorized
	}

	return actor, nil
}
