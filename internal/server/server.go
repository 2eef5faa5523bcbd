package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ContentPipeline/internal/auth"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/usecase"
)

// Server exposes the pipeline and scheduler entry points over HTTP.
type Server struct {
	echo       *echo.Echo
	pipeline   *usecase.Pipeline
	scheduler  *usecase.Scheduler
	dispatcher ports.Dispatcher
	items      ports.ContentRepository
	jobs       ports.JobRepository
	auth       *auth.Service
	logger     *slog.Logger
}

// Deps wires everything the HTTP layer needs.
type Deps struct {
	Pipeline   *usecase.Pipeline
	Scheduler  *usecase.Scheduler
	Dispatcher ports.Dispatcher
	Items      ports.ContentRepository
	Jobs       ports.JobRepository
	Auth       *auth.Service
	Logger     *slog.Logger
}

// New builds the echo application with all routes registered.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		pipeline:   deps.Pipeline,
		scheduler:  deps.Scheduler,
		dispatcher: deps.Dispatcher,
		items:      deps.Items,
		jobs:       deps.Jobs,
		auth:       deps.Auth,
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.echo.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/token", s.login)
	authGroup.GET("/me", s.me, s.requireAuth)

	content := api.Group("/content", s.requireAuth)
	content.POST("", s.createContent)
	content.GET("", s.listContent)
	content.GET("/:id", s.getContent)
	content.POST("/:id/rewrite", s.triggerRewrite)
	content.DELETE("/:id", s.deleteContent)

	jobs := api.Group("/scheduler/jobs", s.requireAuth)
	jobs.POST("", s.createJob)
	jobs.GET("", s.listJobs)
	jobs.PUT("/:id/pause", s.pauseJob)
	jobs.PUT("/:id/resume", s.resumeJob)
	jobs.POST("/:id/run-now", s.runJobNow)
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server starting", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
