// Package echoapi is the localhost HTTP surface consumed by the UI.
// It holds no state of its own: every operation is delegated to the
// core services, and sign-in identity travels as an explicit session
// resolved per request (no ambient globals).
package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Auth      *user.Authenticator
		Sessions  user.SessionStore
		SchoolSvc *school.Service
		Logger    core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(ctx context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, s.opts.Auth)
	registerSchoolAPI(v1, s.opts.SchoolSvc, s.opts.Sessions)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Incluso API!")
}
