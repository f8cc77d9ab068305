package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Token   string
	Expiry  time.Time
	Success bool
}

// InitializePasswordResetHandler mints a single use reset token, stores
// it against the user and emails the reset link.
type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
	now    func() time.Time
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock overrides the time source, used to exercise expiry paths
func (h *InitializePasswordResetHandler) WithClock(now func() time.Time) *InitializePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := NewResetToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	expiry := h.now().Add(h.cfg.GetResetTokenTTL())

	if err := h.repo.Users().SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	link := fmt.Sprintf("%s/password-reset/%s", h.cfg.GetResetLinkBase(), token)

	msg := MailMessage{
		To:      user.Email,
		From:    h.cfg.GetMailSender(),
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Follow this link to reset your password: %s", link),
		HTML:    fmt.Sprintf(`<p>Follow this link to reset your password:</p><p><a href="%s">%s</a></p>`, link, link),
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("Password reset mail delivery failed", "email", user.Email, "error", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(TextCodeDeliveryFailed)
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			Token:   token,
			Expiry:  expiry,
			Success: true,
		})
	}

	return nil
}

// NewResetToken returns 128 bits from the system CSPRNG as lowercase hex.
func NewResetToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
