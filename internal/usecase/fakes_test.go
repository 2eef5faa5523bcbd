package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/fetch"
)

// memContentRepo is an in-memory ports.ContentRepository for state-machine tests.
type memContentRepo struct {
	mu    sync.Mutex
	items map[string]domain.ContentItem

	failNext error
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{items: map[string]domain.ContentItem{}}
}

func (r *memContentRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *memContentRepo) Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return domain.ContentItem{}, err
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *memContentRepo) GetByID(ctx context.Context, id string) (domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return domain.ContentItem{}, domain.ErrNotFound
	}
	return item, nil
}

func (r *memContentRepo) List(ctx context.Context, offset, limit int) ([]domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ContentItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *memContentRepo) MarkScraped(ctx context.Context, id, rawTitle, rawBody string) error {
	return r.update(id, func(item *domain.ContentItem) {
		item.RawTitle = rawTitle
		item.RawBody = rawBody
		item.Status = domain.StatusScraped
	})
}

func (r *memContentRepo) MarkRewritten(ctx context.Context, id, rewrittenBody string) error {
	return r.update(id, func(item *domain.ContentItem) {
		item.RewrittenBody = rewrittenBody
		item.Status = domain.StatusRewritten
	})
}

func (r *memContentRepo) MarkFailed(ctx context.Context, id string) error {
	return r.update(id, func(item *domain.ContentItem) {
		item.Status = domain.StatusFailed
	})
}

func (r *memContentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memContentRepo) update(id string, apply func(*domain.ContentItem)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	item, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	apply(&item)
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

// memJobRepo is an in-memory ports.JobRepository.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.ScheduledJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[string]domain.ScheduledJob{}}
}

func (r *memJobRepo) Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return job, nil
}

func (r *memJobRepo) GetByID(ctx context.Context, id string) (domain.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.ScheduledJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (r *memJobRepo) List(ctx context.Context) ([]domain.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScheduledJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (r *memJobRepo) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	r.jobs[id] = job
	return nil
}

func (r *memJobRepo) StampRun(ctx context.Context, id string, lastRun, nextRun time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.LastRunAt = &lastRun
	job.NextRunAt = nextRun
	r.jobs[id] = job
	return nil
}

func (r *memJobRepo) ListDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []domain.ScheduledJob
	for _, job := range r.jobs {
		if job.Status == domain.JobActive && !job.NextRunAt.After(now) {
			due = append(due, job)
		}
	}
	return due, nil
}

// memDispatcher records enqueued tasks.
type memDispatcher struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func (d *memDispatcher) Enqueue(ctx context.Context, task domain.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *memDispatcher) enqueued() []domain.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Task(nil), d.tasks...)
}

// stubFetcher returns a fixed result or error and counts invocations.
type stubFetcher struct {
	mode   domain.FetchMode
	result fetch.Result
	err    error
	calls  int
}

func (f *stubFetcher) Mode() domain.FetchMode {
	return f.mode
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (fetch.Result, error) {
	f.calls++
	if f.err != nil {
		return fetch.Result{}, f.err
	}
	return f.result, nil
}

// stubProvider returns a fixed rewrite or error and counts invocations.
type stubProvider struct {
	name   string
	output string
	err    error
	calls  int
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) Rewrite(ctx context.Context, text, style string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.output, nil
}

var errStorageDown = errors.New("storage unavailable")
