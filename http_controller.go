package auth

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterAuthRoutes wires the account and session endpoints plus the
// password reset HTML flow.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("sign-up.post")

	app.Post(controller.Routes.Signin, controller.SigninPost).
		SetName("sign-in.post")

	app.Post(controller.Routes.Signout, controller.SignoutPost).
		SetName("sign-out.post")

	app.Get(controller.Routes.Me, controller.MeGet).
		SetName("me.get")

	app.Get(controller.Routes.Users, controller.UsersList).
		SetName("users.list")

	app.Put(fmt.Sprintf("%s/:id/roles", controller.Routes.Users), controller.RolesPut).
		SetName("users.roles.put")

	app.Delete(fmt.Sprintf("%s/:id", controller.Routes.Users), controller.UserDelete).
		SetName("users.delete")

	app.Get(controller.Routes.PasswordReset, controller.PasswordResetGet).
		SetName("pwd-reset.get")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("pwd-reset.post")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.PasswordReset), controller.PasswordResetForm).
		SetName("pwd-reset-do.get")
	app.Post(fmt.Sprintf("%s/:token", controller.Routes.PasswordReset), controller.PasswordResetExecute).
		SetName("pwd-reset-do.post")
}

type AuthControllerRoutes struct {
	Signup        string
	Signin        string
	Signout       string
	Me            string
	Users         string
	PasswordReset string
}

type AuthControllerViews struct {
	PasswordReset string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       *Auther
	Mailer       Mailer
	Config       Config
	Routes       *AuthControllerRoutes
	Views        *AuthControllerViews
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:        "/signup",
			Signin:        "/signin",
			Signout:       "/signout",
			Me:            "/me",
			Users:         "/users",
			PasswordReset: "/password-reset",
		},
		Views: &AuthControllerViews{
			PasswordReset: "password_reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.Mailer == nil {
		c.Mailer = LoggerMailer{Logger: c.Logger}
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return renderError(ctx, c.Logger, err)
		}
	}

	return c
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("==========================")
	}

	var created *User
	var token string

	req := SignupMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
		OnSignup: func(user *User, t string) {
			created = user
			token = t
		},
	}

	signup := NewSignupHandler(a.Repo, a.Auther.TokenService()).WithLogger(a.Logger)
	if err := signup.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	setCookieToken(ctx, a.Config, token)

	return ctx.JSON(router.StatusCreated, map[string]any{
		"user": NewUserResponse(created),
	})
}

func (a *AuthController) SigninPost(ctx router.Context) error {
	payload := new(SigninRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signin parse payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	token, err := a.Auther.Signin(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		// an unknown email and a wrong password are indistinguishable
		// to the caller
		if goerrors.IsNotFound(err) {
			err = ErrMismatchedHashAndPassword
		}
		return a.ErrorHandler(ctx, err)
	}

	setCookieToken(ctx, a.Config, token)

	return ctx.JSON(router.StatusOK, map[string]any{
		"ok": true,
	})
}

func (a *AuthController) SignoutPost(ctx router.Context) error {
	if session, ok := SessionFromRouterContext(ctx, SessionContextKey); ok {
		if err := a.Auther.Signout(ctx.Context(), session.GetUserID()); err != nil {
			a.Logger.Error("signout error: ", "error", err)
			return a.ErrorHandler(ctx, err)
		}
	}

	cookieDel(ctx, a.Config)

	return ctx.JSON(router.StatusOK, map[string]any{
		"ok": true,
	})
}

func (a *AuthController) MeGet(ctx router.Context) error {
	session, _ := SessionFromRouterContext(ctx, SessionContextKey)

	user, err := a.Auther.CurrentUser(ctx.Context(), session)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": NewUserResponse(user),
	})
}

func (a *AuthController) UsersList(ctx router.Context) error {
	session, _ := SessionFromRouterContext(ctx, SessionContextKey)

	actor, err := a.Auther.CurrentUser(ctx.Context(), session)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if !RoleAtLeast(HighestRole(actor.Roles), RoleAdmin) {
		return a.ErrorHandler(ctx, ErrNotAuthorized)
	}

	users, err := a.Repo.Users().List(ctx.Context())
	if err != nil {
		a.Logger.Error("users list error: ", "error", err)
		return a.ErrorHandler(ctx, wrapPersistenceError(err, "failed to list users"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": NewUserListResponse(users),
	})
}

// RolesPutPayload is the role replacement payload
type RolesPutPayload struct {
	Roles []UserRole `form:"roles" json:"roles"`
}

func (a *AuthController) RolesPut(ctx router.Context) error {
	payload := new(RolesPutPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("roles put parse payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	session, _ := SessionFromRouterContext(ctx, SessionContextKey)

	var updated *User
	req := UpdateRolesMessage{
		Actor:  session,
		UserID: ctx.Param("id", ""),
		Roles:  payload.Roles,
		OnResponse: func(user *User) {
			updated = user
		},
	}

	handler := NewUpdateRolesHandler(a.Repo).WithLogger(a.Logger)
	if err := handler.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": NewUserResponse(updated),
	})
}

func (a *AuthController) UserDelete(ctx router.Context) error {
	session, _ := SessionFromRouterContext(ctx, SessionContextKey)

	req := DeleteUserMessage{
		Actor:  session,
		UserID: ctx.Param("id", ""),
	}

	handler := NewDeleteUserHandler(a.Repo).WithLogger(a.Logger)
	if err := handler.Execute(ctx.Context(), req); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"ok": true,
	})
}

const (
	stageKey     = "stage"
	tokenKey     = "token"
	emailKey     = "email"
	stageRequest = "request"
	stageChange  = "change"
	stageDone    = "done"
	stageUnknown = "unknown"
)

func (a *AuthController) PasswordResetGet(ctx router.Context) error {
	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": nil,
		"reset": map[string]string{
			stageKey: stageRequest,
		},
	})
}

// PasswordResetRequestPayload holds values for password reset
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	errs := map[string]string{}
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		errs["form"] = "Failed to parse form"
		a.Logger.Error("password reset parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Mailer, a.Config).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset init error: ", "error", err)
		errs["reset"] = err.Error()
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error requesting password reset",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": errs,
			"record": payload,
			"reset": map[string]string{
				stageKey: stageRequest,
			},
		})
	}

	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": errs,
		"reset": map[string]string{
			stageKey: stageRequest,
			emailKey: payload.Email,
		},
		"sent": true,
	})
}

func (a *AuthController) PasswordResetForm(ctx router.Context) error {
	token := ctx.Param("token", "")

	errs := map[string]string{}
	currentStage := stageChange

	user, err := a.Repo.Users().GetByResetToken(ctx.Context(), token)
	if err != nil {
		currentStage = stageUnknown
	} else if user.ResetPasswordExpiry == nil || time.Now().After(*user.ResetPasswordExpiry) {
		currentStage = stageUnknown
	}

	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": errs,
		"reset": map[string]string{
			stageKey: currentStage,
			tokenKey: token,
		},
	})
}

// PasswordResetVerifyPayload holds values for password reset
type PasswordResetVerifyPayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(PasswordMinLen, PasswordMaxLen),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) PasswordResetExecute(ctx router.Context) error {
	token := ctx.Param("token", "")

	errs := map[string]string{}
	payload := new(PasswordResetVerifyPayload)

	if err := ctx.Bind(payload); err != nil {
		errs["form"] = "Failed to parse form"
		a.Logger.Error("password reset parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: ", "error", err)
		errs = FormatValidationErrorToMap(err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"record":     payload,
			"validation": errs,
			"reset": map[string]string{
				stageKey: stageChange,
				tokenKey: token,
			},
		})
	}

	input := FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo).WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), input); err != nil {
		errs["validation"] = err.Error()
		return ctx.Render(a.Views.PasswordReset, router.ViewContext{
			"errors": errs,
			"reset": map[string]string{
				stageKey: stageChange,
				tokenKey: token,
			},
		})
	}

	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": errs,
		"reset": map[string]string{
			stageKey: stageDone,
		},
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("values must match")
		}
		return nil
	}
}
