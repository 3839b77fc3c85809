package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
	"github.com/trezcool/gradebook/core/evaluation"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
)

type (
	Deps struct {
		Validate     *validator.Validate
		Translator   ut.Translator
		UserSvc      *user.Service
		StudentSvc   *student.Service
		ClassSvc     *class.Service
		DashboardSvc *dashboard.Service
		Sessions     *evaluation.Sessions
	}

	Server struct {
		conf     *core.Config
		logger   core.Logger
		app      *echo.Echo
		deps     *Deps
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, logger core.Logger, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		app:      echo.New(),
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	debug := s.conf.Debug

	s.app.HideBanner = s.conf.TestMode
	s.app.HidePort = s.conf.TestMode
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	auth := authMiddleware(s.conf, s.deps.UserSvc)

	registerAuthAPI(v1, auth, s.conf, s.deps.UserSvc, s.deps.Sessions, s.deps.Validate)
	registerUserAPI(v1, auth, s.deps.UserSvc, s.deps.Validate)
	registerClassAPI(v1, auth, s.deps.ClassSvc, s.deps.Sessions, s.deps.Validate)
	registerStudentAPI(v1, auth, s.deps.StudentSvc, s.deps.Validate)
	registerDashboardAPI(v1, auth, s.deps.DashboardSvc)
	registerEvaluationAPI(v1, auth, s.deps.Sessions, s.deps.Validate)
}

// Start listens on the configured address. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
