package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/fetch"
	"ContentPipeline/internal/infrastructure/fetcher"
	"ContentPipeline/internal/infrastructure/llm"
	"ContentPipeline/internal/infrastructure/queue"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/rewrite"
	"ContentPipeline/internal/usecase"
)

// components holds everything both binaries share: the stores, the dispatch
// adapter, and the two use cases.
type components struct {
	pool       *pgxpool.Pool
	rdb        *redis.Client
	items      *storage.ContentRepository
	jobs       *storage.JobRepository
	users      *storage.UserRepository
	dispatcher *queue.RedisDispatcher
	pipeline   *usecase.Pipeline
	scheduler  *usecase.Scheduler
}

func buildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	pool, err := storage.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	rdb, err := queue.NewRedisClient(cfg.Queue.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	items := storage.NewContentRepository(pool)
	jobs := storage.NewJobRepository(pool)
	users := storage.NewUserRepository(pool)
	dispatcher := queue.NewRedisDispatcher(rdb, cfg.Queue.Stream)

	fetchers := fetch.NewRegistry()
	fetchers.Register(fetcher.NewStaticFetcher(nil, cfg.Fetch.UserAgent, cfg.Fetch.Timeout))
	fetchers.Register(fetcher.NewRenderedFetcher(cfg.Fetch.UserAgent, cfg.Fetch.Timeout, cfg.Fetch.SettleDelay))

	rewriters := rewrite.NewRegistry()
	rewriters.Register(llm.NewOpenAIProvider(cfg.Rewrite.OpenAI, cfg.Rewrite.Timeout))
	rewriters.Register(llm.NewGeminiProvider(cfg.Rewrite.Gemini, cfg.Rewrite.Timeout))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Items:           items,
		Fetchers:        fetchers,
		Rewriters:       rewriters,
		DefaultProvider: cfg.Rewrite.DefaultProvider,
		DefaultStyle:    cfg.Rewrite.DefaultStyle,
		Logger:          logger.With("component", "pipeline"),
	})

	sched := usecase.NewScheduler(usecase.SchedulerDeps{
		Jobs:       jobs,
		Dispatcher: dispatcher,
		Pipeline:   pipeline,
		Logger:     logger.With("component", "scheduler"),
	})

	return &components{
		pool:       pool,
		rdb:        rdb,
		items:      items,
		jobs:       jobs,
		users:      users,
		dispatcher: dispatcher,
		pipeline:   pipeline,
		scheduler:  sched,
	}, nil
}

func (c *components) close() {
	c.pool.Close()
	_ = c.rdb.Close()
}
