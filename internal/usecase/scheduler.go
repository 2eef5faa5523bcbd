package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// ErrJobNotRunnable rejects run-now requests for jobs that are not active.
var ErrJobNotRunnable = errors.New("job is not active")

// SchedulerDeps wires the job store, the dispatch adapter, and the pipeline
// entry point used to create items on every tick.
type SchedulerDeps struct {
	Jobs       ports.JobRepository
	Dispatcher ports.Dispatcher
	Pipeline   *Pipeline
	Logger     *slog.Logger
	Now        func() time.Time
}

// Scheduler maintains recurring scrape jobs. It exclusively owns the jobs'
// timing fields; it only ever creates content items, never mutates them.
type Scheduler struct {
	jobs       ports.JobRepository
	dispatcher ports.Dispatcher
	pipeline   *Pipeline
	logger     *slog.Logger
	now        func() time.Time
}

// NewScheduler constructs the scheduling component.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Scheduler{
		jobs:       deps.Jobs,
		dispatcher: deps.Dispatcher,
		pipeline:   deps.Pipeline,
		logger:     logger,
		now:        now,
	}
}

// CreateJob persists an active job with next-run advanced from creation time
// by the cadence interval.
func (s *Scheduler) CreateJob(ctx context.Context, targetURL string, cadence domain.Cadence, customInterval time.Duration, config string) (domain.ScheduledJob, error) {
	now := s.now()
	job := domain.ScheduledJob{
		ID:             uuid.New().String(),
		TargetURL:      targetURL,
		Cadence:        cadence,
		CustomInterval: customInterval,
		Status:         domain.JobActive,
		NextRunAt:      now.Add(cadence.Interval(customInterval)),
		Config:         config,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info("job created", "job_id", created.ID, "url", targetURL, "cadence", cadence)
	return created, nil
}

// Pause toggles the job status only; timing fields are untouched.
func (s *Scheduler) Pause(ctx context.Context, id string) error {
	return s.jobs.UpdateStatus(ctx, id, domain.JobPaused)
}

// Resume toggles the job status only; timing fields are untouched.
func (s *Scheduler) Resume(ctx context.Context, id string) error {
	return s.jobs.UpdateStatus(ctx, id, domain.JobActive)
}

// RunNow enqueues an immediate tick for an active job. Paused jobs are
// rejected here; the tick handler applies the same guard for cadence ticks.
func (s *Scheduler) RunNow(ctx context.Context, id string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != domain.JobActive {
		return ErrJobNotRunnable
	}

	if err := s.dispatcher.Enqueue(ctx, domain.NewTickTask(job.ID)); err != nil {
		return fmt.Errorf("enqueue tick for job %s: %w", id, err)
	}

	s.logger.Info("job triggered to run now", "job_id", id)
	return nil
}

// HandleTick executes one run of a scheduled job: it creates a pending item
// for the target URL, stamps last-run, recomputes next-run from last-run,
// and returns the fetch task to enqueue. Missing or inactive jobs are a
// no-op without any timing update.
func (s *Scheduler) HandleTick(ctx context.Context, jobID string) (*domain.Task, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("tick for missing job, skipping", "job_id", jobID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	if job.Status != domain.JobActive {
		s.logger.Info("tick for inactive job, skipping", "job_id", jobID, "status", job.Status)
		return nil, nil
	}

	_, task, err := s.pipeline.CreateItem(ctx, job.TargetURL, domain.FetchStatic, "")
	if err != nil {
		return nil, fmt.Errorf("tick job %s: %w", jobID, err)
	}

	lastRun := s.now()
	nextRun := lastRun.Add(job.Cadence.Interval(job.CustomInterval))
	if err := s.jobs.StampRun(ctx, jobID, lastRun, nextRun); err != nil {
		return nil, fmt.Errorf("stamp run for job %s: %w", jobID, err)
	}

	s.logger.Info("job ticked", "job_id", jobID, "next_run", nextRun)
	return &task, nil
}
