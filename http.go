package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// setCookieToken writes the session cookie. SameSite is None because the
// API is consumed cross origin, which in turn requires Secure.
func setCookieToken(c router.Context, cfg Config, val string) {
	c.Cookie(&router.Cookie{
		Name:     cfg.GetCookieName(),
		Value:    val,
		Expires:  time.Now().Add(cfg.GetTokenTTL()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})
}

// cookieDel expires the session cookie with the same attributes it was
// set with, otherwise some agents keep the stale copy around.
func cookieDel(c router.Context, cfg Config) {
	c.Cookie(&router.Cookie{
		Name:     cfg.GetCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})
}

// renderError maps a rich error to a JSON response with its HTTP code
func renderError(c router.Context, logger Logger, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	logger.Info(
		"Request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	body := map[string]any{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return c.JSON(status, body)
}

// FormatValidationErrorToMap flattens ozzo field errors into a template
// friendly map of field name to message.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if fieldErrs, ok := err.(validation.Errors); ok {
		for field, ferr := range fieldErrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// UserResponse is the public shape of a user record, never exposing the
// password hash or reset token.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone_number,omitempty"`
	Roles     []UserRole `json:"roles"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func NewUserResponse(user *User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}

func NewUserListResponse(users []*User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
