package app

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/infrastructure/queue"
	"ContentPipeline/internal/infrastructure/scheduler"
)

// WorkerApp runs the queue consumer and the due-job poller.
type WorkerApp struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewWorkerApp bundles configuration for the worker binary.
func NewWorkerApp(cfg config.Config, logger *slog.Logger) *WorkerApp {
	return &WorkerApp{cfg: cfg, logger: logger}
}

// Run consumes tasks until the context is cancelled.
func (a *WorkerApp) Run(ctx context.Context) error {
	comps, err := buildComponents(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer comps.close()

	worker := queue.NewWorker(comps.rdb, queue.WorkerConfig{
		Stream:       a.cfg.Queue.Stream,
		Group:        a.cfg.Queue.Group,
		Consumer:     a.cfg.Queue.Consumer,
		Workers:      a.cfg.Queue.Workers,
		BlockTimeout: a.cfg.Queue.BlockTimeout,
	}, comps.pipeline, comps.scheduler, comps.dispatcher, a.logger.With("component", "worker"))

	poller := scheduler.NewPoller(comps.jobs, comps.dispatcher, a.cfg.Scheduler.PollInterval, a.logger.With("component", "poller"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		if err := poller.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return poller.Stop(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
