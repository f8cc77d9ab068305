package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type DeleteUserMessage struct {
	Actor  *SessionObject `json:"-"`
	UserID string         `json:"user_id"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

// DeleteUserHandler removes a user account. Only a superAdmin with a
// live session may execute it.
type DeleteUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewDeleteUserHandler(repo RepositoryManager) *DeleteUserHandler {
	return &DeleteUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *DeleteUserHandler) WithLogger(logger Logger) *DeleteUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	actor, err := requireSuperAdmin(ctx, h.repo, event.Actor)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user identifier").
			WithMetadata(map[string]any{"user_id": event.UserID})
	}

	if err := h.repo.Users().Remove(ctx, targetID); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}

	h.logger.Info(
		"User deleted",
		"actor", actor.ID.String(),
		"user", targetID.String(),
	)

	return nil
}
