package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-router"
)

// ServerOptions collects the pieces the HTTP surface needs. ViewsDir
// must hold the django templates for the password reset flow.
type ServerOptions struct {
	Config   Config
	Repo     RepositoryManager
	Mailer   Mailer
	Logger   Logger
	ViewsDir string
	Debug    bool
}

// Server binds the session middleware and auth routes on a fiber app
// behind the router abstraction.
type Server struct {
	adapter router.Server[*fiber.App]
	auther  *Auther
	logger  Logger
}

func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = defLogger{}
	}

	viewsDir := opts.ViewsDir
	if viewsDir == "" {
		viewsDir = "./views"
	}

	engine := django.New(viewsDir, ".html")

	adapter := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	auther := NewAuthenticator(opts.Repo, opts.Config).WithLogger(logger)

	adapter.Router().Use(NewSessionMiddleware(SessionMiddlewareConfig{
		Repo:         opts.Repo,
		TokenService: auther.TokenService(),
		Config:       opts.Config,
		Logger:       logger,
	}))

	RegisterAuthRoutes(adapter.Router(),
		WithControllerRepo(opts.Repo),
		WithControllerAuther(auther),
		WithControllerMailer(opts.Mailer),
		WithControllerConfig(opts.Config),
		WithControllerLogger(logger),
	)

	return &Server{
		adapter: adapter,
		auther:  auther,
		logger:  logger,
	}
}

// Router exposes the underlying router so callers can register their
// own routes behind the same session middleware.
func (s *Server) Router() router.Router[*fiber.App] {
	return s.adapter.Router()
}

// Auther exposes the authenticator the server was built with
func (s *Server) Auther() *Auther {
	return s.auther
}

// Serve blocks listening on addr until the context is cancelled
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.adapter.Serve(addr)
	}()

	select {
	case <-ctx.Done():
		if err := s.adapter.Shutdown(context.Background()); err != nil {
			s.logger.Error("Server shutdown error", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
