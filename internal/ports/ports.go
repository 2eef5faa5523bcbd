package ports

import (
	"context"
	"time"

	"ContentPipeline/internal/domain"
)

// ContentRepository persists content items. Stage updates are atomic: the
// storage layer writes all fields of a stage in a single statement.
type ContentRepository interface {
	Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error)
	GetByID(ctx context.Context, id string) (domain.ContentItem, error)
	List(ctx context.Context, offset, limit int) ([]domain.ContentItem, error)
	MarkScraped(ctx context.Context, id, rawTitle, rawBody string) error
	MarkRewritten(ctx context.Context, id, rewrittenBody string) error
	MarkFailed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// JobRepository persists scheduled jobs.
type JobRepository interface {
	Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error)
	GetByID(ctx context.Context, id string) (domain.ScheduledJob, error)
	List(ctx context.Context) ([]domain.ScheduledJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error
	StampRun(ctx context.Context, id string, lastRun, nextRun time.Time) error
	ListDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error)
}

// UserRepository persists API principals.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Dispatcher hands tasks to the external at-least-once work queue.
type Dispatcher interface {
	Enqueue(ctx context.Context, task domain.Task) error
}
