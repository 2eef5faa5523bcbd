package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const jobColumns = `id, target_url, cadence, custom_interval_seconds, status, last_run_at, next_run_at,
COALESCE(config, ''), created_at, updated_at`

// JobRepository persists scheduled jobs in Postgres.
type JobRepository struct {
	db DB
}

var _ ports.JobRepository = (*JobRepository)(nil)

// NewJobRepository wires a database handle.
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job.
func (r *JobRepository) Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error) {
	query, args, err := builder.
		Insert("scheduled_jobs").
		Columns("id", "target_url", "cadence", "custom_interval_seconds", "status", "next_run_at", "config", "created_at", "updated_at").
		Values(job.ID, job.TargetURL, job.Cadence, int64(job.CustomInterval.Seconds()), job.Status, job.NextRunAt, job.Config, job.CreatedAt, job.UpdatedAt).
		ToSql()
	if err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// GetByID loads one job.
func (r *JobRepository) GetByID(ctx context.Context, id string) (domain.ScheduledJob, error) {
	query, args, err := builder.
		Select(jobColumns).
		From("scheduled_jobs").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("build select: %w", err)
	}

	job, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScheduledJob{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("query job: %w", err)
	}
	return job, nil
}

// List returns jobs newest first.
func (r *JobRepository) List(ctx context.Context) ([]domain.ScheduledJob, error) {
	query, args, err := builder.
		Select(jobColumns).
		From("scheduled_jobs").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryJobs(ctx, query, args)
}

// ListDue returns active jobs whose next run is at or before now.
func (r *JobRepository) ListDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error) {
	query, args, err := builder.
		Select(jobColumns).
		From("scheduled_jobs").
		Where("status = ?", domain.JobActive).
		Where("next_run_at <= ?", now).
		OrderBy("next_run_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryJobs(ctx, query, args)
}

// UpdateStatus toggles job status without touching timing fields.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	query, args, err := builder.
		Update("scheduled_jobs").
		Set("status", status).
		Set("updated_at", nowExpr()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, query, args)
}

// StampRun records one execution: last-run and the recomputed next-run in a
// single statement.
func (r *JobRepository) StampRun(ctx context.Context, id string, lastRun, nextRun time.Time) error {
	query, args, err := builder.
		Update("scheduled_jobs").
		Set("last_run_at", lastRun).
		Set("next_run_at", nextRun).
		Set("updated_at", nowExpr()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, query, args)
}

func (r *JobRepository) exec(ctx context.Context, query string, args []any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepository) queryJobs(ctx context.Context, query string, args []any) ([]domain.ScheduledJob, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (domain.ScheduledJob, error) {
	var (
		job             domain.ScheduledJob
		intervalSeconds int64
	)
	err := row.Scan(
		&job.ID,
		&job.TargetURL,
		&job.Cadence,
		&intervalSeconds,
		&job.Status,
		&job.LastRunAt,
		&job.NextRunAt,
		&job.Config,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	job.CustomInterval = time.Duration(intervalSeconds) * time.Second
	return job, err
}
