package scheduler

import (
	"context"
	"log/slog"
	"time"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// Poller enqueues tick tasks for active jobs whose next-run has expired.
// It runs inside the worker process on a fixed interval.
type Poller struct {
	jobs       ports.JobRepository
	dispatcher ports.Dispatcher
	interval   time.Duration
	logger     *slog.Logger
	stop       chan struct{}
}

// NewPoller builds a poller with the given scan interval.
func NewPoller(jobs ports.JobRepository, dispatcher ports.Dispatcher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{jobs: jobs, dispatcher: dispatcher, interval: interval, logger: logger}
}

// Start begins scanning for due jobs until the context is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	if p.stop != nil {
		return nil
	}

	p.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				p.scan(ctx, t.UTC())
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the polling goroutine.
func (p *Poller) Stop(ctx context.Context) error {
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	p.stop = nil
	return nil
}

func (p *Poller) scan(ctx context.Context, now time.Time) {
	due, err := p.jobs.ListDue(ctx, now)
	if err != nil {
		p.logger.Error("list due jobs", "error", err)
		return
	}

	for _, job := range due {
		if err := p.dispatcher.Enqueue(ctx, domain.NewTickTask(job.ID)); err != nil {
			p.logger.Error("enqueue tick", "job_id", job.ID, "error", err)
			continue
		}
		p.logger.Debug("tick enqueued", "job_id", job.ID)
	}
}
