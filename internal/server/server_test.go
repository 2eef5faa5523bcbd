package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ContentPipeline/internal/auth"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/fetch"
	"ContentPipeline/internal/rewrite"
	"ContentPipeline/internal/usecase"
)

type fakeItems struct {
	items map[string]domain.ContentItem
}

func (f *fakeItems) Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItems) GetByID(ctx context.Context, id string) (domain.ContentItem, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.ContentItem{}, domain.ErrNotFound
	}
	return item, nil
}

func (f *fakeItems) List(ctx context.Context, offset, limit int) ([]domain.ContentItem, error) {
	out := make([]domain.ContentItem, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeItems) MarkScraped(ctx context.Context, id, rawTitle, rawBody string) error {
	item := f.items[id]
	item.RawTitle, item.RawBody, item.Status = rawTitle, rawBody, domain.StatusScraped
	f.items[id] = item
	return nil
}

func (f *fakeItems) MarkRewritten(ctx context.Context, id, rewrittenBody string) error {
	item := f.items[id]
	item.RewrittenBody, item.Status = rewrittenBody, domain.StatusRewritten
	f.items[id] = item
	return nil
}

func (f *fakeItems) MarkFailed(ctx context.Context, id string) error {
	item := f.items[id]
	item.Status = domain.StatusFailed
	f.items[id] = item
	return nil
}

func (f *fakeItems) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeJobs struct {
	jobs map[string]domain.ScheduledJob
}

func (f *fakeJobs) Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error) {
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) GetByID(ctx context.Context, id string) (domain.ScheduledJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return domain.ScheduledJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobs) List(ctx context.Context) ([]domain.ScheduledJob, error) {
	out := make([]domain.ScheduledJob, 0, len(f.jobs))
	for _, job := range f.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (f *fakeJobs) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	job, ok := f.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	f.jobs[id] = job
	return nil
}

func (f *fakeJobs) StampRun(ctx context.Context, id string, lastRun, nextRun time.Time) error {
	job, ok := f.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.LastRunAt = &lastRun
	job.NextRunAt = nextRun
	f.jobs[id] = job
	return nil
}

func (f *fakeJobs) ListDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error) {
	return nil, nil
}

type fakeUsers struct {
	users map[string]domain.User
}

func (f *fakeUsers) Create(ctx context.Context, user domain.User) (domain.User, error) {
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	user, ok := f.users[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

type recordingDispatcher struct {
	tasks []domain.Task
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, task domain.Task) error {
	d.tasks = append(d.tasks, task)
	return nil
}

type testEnv struct {
	server     *Server
	items      *fakeItems
	jobs       *fakeJobs
	dispatcher *recordingDispatcher
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	items := &fakeItems{items: map[string]domain.ContentItem{}}
	jobs := &fakeJobs{jobs: map[string]domain.ScheduledJob{}}
	users := &fakeUsers{users: map[string]domain.User{}}
	dispatcher := &recordingDispatcher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Items:           items,
		Fetchers:        fetch.NewRegistry(),
		Rewriters:       rewrite.NewRegistry(),
		DefaultProvider: "openai",
		DefaultStyle:    "concise",
		Logger:          logger,
	})
	scheduler := usecase.NewScheduler(usecase.SchedulerDeps{
		Jobs:       jobs,
		Dispatcher: dispatcher,
		Pipeline:   pipeline,
		Logger:     logger,
	})
	authSvc := auth.NewService(users, "test-secret", time.Hour)

	srv := New(Deps{
		Pipeline:   pipeline,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		Items:      items,
		Jobs:       jobs,
		Auth:       authSvc,
		Logger:     logger,
	})

	return &testEnv{server: srv, items: items, jobs: jobs, dispatcher: dispatcher}
}

func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) authToken(t *testing.T) string {
	t.Helper()

	rec := env.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"alice@example.com","username":"alice","password":"s3cret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(http.MethodPost, "/api/v1/auth/token", "",
		`{"username":"alice","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out.AccessToken
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestContentRequiresAuth(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)

	rec := env.do(http.MethodGet, "/api/v1/content", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/v1/content", "forged-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestCreateContent(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	rec := env.do(http.MethodPost, "/api/v1/content", token,
		`{"source_url":"https://example.com","fetch_mode":"static"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var out contentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != string(domain.StatusPending) {
		t.Fatalf("status = %s, want pending", out.Status)
	}

	if len(env.dispatcher.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(env.dispatcher.tasks))
	}
	if env.dispatcher.tasks[0].Kind != domain.TaskFetch || env.dispatcher.tasks[0].ItemID != out.ID {
		t.Fatalf("unexpected task: %+v", env.dispatcher.tasks[0])
	}
}

func TestCreateContentValidation(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	rec := env.do(http.MethodPost, "/api/v1/content", token, `{"fetch_mode":"static"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url status = %d, want 400", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/content", token,
		`{"source_url":"https://example.com","fetch_mode":"headless"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad mode status = %d, want 400", rec.Code)
	}
}

func TestGetAndDeleteContent(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	env.items.items["item-1"] = domain.ContentItem{
		ID: "item-1", SourceURL: "https://example.com", FetchMode: domain.FetchStatic, Status: domain.StatusScraped,
	}

	rec := env.do(http.MethodGet, "/api/v1/content/item-1", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/v1/content/missing", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing get status = %d, want 404", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/v1/content/item-1", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/v1/content/item-1", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestTriggerRewriteEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	env.items.items["empty"] = domain.ContentItem{ID: "empty", Status: domain.StatusPending}
	env.items.items["ready"] = domain.ContentItem{ID: "ready", RawBody: "text", Status: domain.StatusScraped}

	rec := env.do(http.MethodPost, "/api/v1/content/missing/rewrite", token, `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing item status = %d, want 404", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/content/empty/rewrite", token, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/content/ready/rewrite", token, `{"provider":"gemini","style":"formal"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("trigger status = %d: %s", rec.Code, rec.Body)
	}
	last := env.dispatcher.tasks[len(env.dispatcher.tasks)-1]
	if last.Kind != domain.TaskRewrite || last.Provider != "gemini" || last.Style != "formal" {
		t.Fatalf("unexpected task: %+v", last)
	}
}

func TestJobEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	rec := env.do(http.MethodPost, "/api/v1/scheduler/jobs", token,
		`{"target_url":"https://example.com/feed","cadence":"weekly"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job status = %d: %s", rec.Code, rec.Body)
	}
	var job jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Cadence != "weekly" || job.Status != string(domain.JobActive) {
		t.Fatalf("unexpected job: %+v", job)
	}

	rec = env.do(http.MethodPost, "/api/v1/scheduler/jobs", token,
		`{"target_url":"https://example.com/feed","cadence":"hourly"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad cadence status = %d, want 400", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/scheduler/jobs/"+job.ID+"/run-now", token, "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("run-now status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(http.MethodPut, "/api/v1/scheduler/jobs/"+job.ID+"/pause", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/scheduler/jobs/"+job.ID+"/run-now", token, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("paused run-now status = %d, want 409", rec.Code)
	}

	rec = env.do(http.MethodPut, "/api/v1/scheduler/jobs/missing/resume", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing resume status = %d, want 404", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"not-an-email","username":"alice","password":"s3cret"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email status = %d, want 400", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"alice@example.com","username":"","password":"s3cret"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing username status = %d, want 400", rec.Code)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	env := newTestServer(t)
	token := env.authToken(t)

	rec := env.do(http.MethodGet, "/api/v1/auth/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}

	var out userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Username != "alice" {
		t.Fatalf("username = %s", out.Username)
	}
}
