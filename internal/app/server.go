package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ContentPipeline/internal/auth"
	"ContentPipeline/internal/config"
	"ContentPipeline/internal/server"
)

// ServerApp runs the HTTP API process.
type ServerApp struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewServerApp bundles configuration for the API binary.
func NewServerApp(cfg config.Config, logger *slog.Logger) *ServerApp {
	return &ServerApp{cfg: cfg, logger: logger}
}

// Run serves HTTP until the context is cancelled, then drains.
func (a *ServerApp) Run(ctx context.Context) error {
	comps, err := buildComponents(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer comps.close()

	authSvc := auth.NewService(comps.users, a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenExpiry)

	srv := server.New(server.Deps{
		Pipeline:   comps.pipeline,
		Scheduler:  comps.scheduler,
		Dispatcher: comps.dispatcher,
		Items:      comps.items,
		Jobs:       comps.jobs,
		Auth:       authSvc,
		Logger:     a.logger.With("component", "http"),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
