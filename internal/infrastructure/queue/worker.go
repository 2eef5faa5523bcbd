package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/usecase"
)

// WorkerConfig holds consumer-group parameters.
type WorkerConfig struct {
	Stream       string
	Group        string
	Consumer     string
	Workers      int
	BlockTimeout time.Duration
}

// Worker consumes tasks from the stream through a consumer group and routes
// them to the orchestrator and scheduler handlers. Successfully processed
// messages are acknowledged; messages whose handler returned an error stay
// pending for redelivery. A stage failure recorded into item status counts
// as successful processing.
type Worker struct {
	client     *redis.Client
	cfg        WorkerConfig
	pipeline   *usecase.Pipeline
	scheduler  *usecase.Scheduler
	dispatcher ports.Dispatcher
	logger     *slog.Logger
}

// NewWorker wires the consumer.
func NewWorker(client *redis.Client, cfg WorkerConfig, pipeline *usecase.Pipeline, scheduler *usecase.Scheduler, dispatcher ports.Dispatcher, logger *slog.Logger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		client:     client,
		cfg:        cfg,
		pipeline:   pipeline,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run blocks consuming tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := EnsureGroup(ctx, w.client, w.cfg.Stream, w.cfg.Group); err != nil {
		return err
	}

	w.logger.Info("worker starting",
		"stream", w.cfg.Stream,
		"group", w.cfg.Group,
		"workers", w.cfg.Workers,
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		consumer := fmt.Sprintf("%s-%d", w.cfg.Consumer, i)
		g.Go(func() error {
			return w.consumeLoop(ctx, consumer)
		})
	}
	return g.Wait()
}

func (w *Worker) consumeLoop(ctx context.Context, consumer string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.readAndProcess(ctx, consumer); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("read stream", "consumer", consumer, "error", err)
			time.Sleep(time.Second)
		}
	}
}

func (w *Worker) readAndProcess(ctx context.Context, consumer string) error {
	streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.cfg.Group,
		Consumer: consumer,
		Streams:  []string{w.cfg.Stream, ">"},
		Count:    10,
		Block:    w.cfg.BlockTimeout,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			task, err := parseTask(msg)
			if err != nil {
				// Malformed messages can never succeed; ack to drop them.
				w.logger.Error("drop malformed message", "message_id", msg.ID, "error", err)
				w.ack(ctx, msg.ID)
				continue
			}

			if err := w.Handle(ctx, task); err != nil {
				w.logger.Error("task failed, leaving pending",
					"message_id", msg.ID,
					"task_id", task.ID,
					"kind", task.Kind,
					"error", err,
				)
				continue
			}

			w.ack(ctx, msg.ID)
		}
	}

	return nil
}

// Handle routes one task to its handler and enqueues any follow-up task the
// handler returned.
func (w *Worker) Handle(ctx context.Context, task domain.Task) error {
	switch task.Kind {
	case domain.TaskFetch:
		next, err := w.pipeline.HandleFetch(ctx, task.ItemID, task.URL, task.Mode)
		if err != nil {
			return err
		}
		return w.enqueueNext(ctx, next)
	case domain.TaskRewrite:
		return w.pipeline.HandleRewrite(ctx, task.ItemID, task.Provider, task.Style)
	case domain.TaskScheduledTick:
		next, err := w.scheduler.HandleTick(ctx, task.JobID)
		if err != nil {
			return err
		}
		return w.enqueueNext(ctx, next)
	default:
		w.logger.Warn("unknown task kind, dropping", "task_id", task.ID, "kind", task.Kind)
		return nil
	}
}

func (w *Worker) enqueueNext(ctx context.Context, next *domain.Task) error {
	if next == nil {
		return nil
	}
	if err := w.dispatcher.Enqueue(ctx, *next); err != nil {
		return fmt.Errorf("enqueue follow-up %s: %w", next.Kind, err)
	}
	return nil
}

func (w *Worker) ack(ctx context.Context, messageID string) {
	if err := w.client.XAck(ctx, w.cfg.Stream, w.cfg.Group, messageID).Err(); err != nil {
		w.logger.Error("ack message", "message_id", messageID, "error", err)
	}
}
