package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// RedisDispatcher implements the task dispatch boundary on a Redis Stream.
// Delivery is at-least-once and unordered across consumers.
type RedisDispatcher struct {
	client *redis.Client
	stream string
}

var _ ports.Dispatcher = (*RedisDispatcher)(nil)

// NewRedisDispatcher wires an existing client to a stream key.
func NewRedisDispatcher(client *redis.Client, stream string) *RedisDispatcher {
	return &RedisDispatcher{client: client, stream: stream}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Enqueue appends the task to the stream as a flat JSON payload.
func (d *RedisDispatcher) Enqueue(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	err = d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]any{
			"task_id": task.ID,
			"kind":    string(task.Kind),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd task %s: %w", task.ID, err)
	}

	return nil
}

// EnsureGroup creates the consumer group, tolerating an existing one.
func EnsureGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func parseTask(msg redis.XMessage) (domain.Task, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return domain.Task{}, fmt.Errorf("message %s has no payload", msg.ID)
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return domain.Task{}, fmt.Errorf("unmarshal message %s: %w", msg.ID, err)
	}
	return task, nil
}
