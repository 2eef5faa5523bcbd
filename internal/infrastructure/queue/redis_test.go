package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ContentPipeline/internal/domain"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestEnqueueWritesStreamEntry(t *testing.T) {
	client := newTestRedis(t)
	d := NewRedisDispatcher(client, "pipeline:tasks")

	task := domain.NewFetchTask("item-1", "https://example.com", domain.FetchStatic)
	if err := d.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	msgs, err := client.XRange(context.Background(), "pipeline:tasks", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("stream has %d entries, want 1", len(msgs))
	}
	if msgs[0].Values["task_id"] != task.ID {
		t.Fatalf("task_id field = %v", msgs[0].Values["task_id"])
	}
	if msgs[0].Values["kind"] != string(domain.TaskFetch) {
		t.Fatalf("kind field = %v", msgs[0].Values["kind"])
	}

	parsed, err := parseTask(msgs[0])
	if err != nil {
		t.Fatalf("parseTask: %v", err)
	}
	if parsed.ID != task.ID || parsed.Kind != task.Kind || parsed.ItemID != "item-1" {
		t.Fatalf("round-tripped task = %+v", parsed)
	}
	if parsed.URL != "https://example.com" || parsed.Mode != domain.FetchStatic {
		t.Fatalf("round-tripped payload = %+v", parsed)
	}
}

func TestEnsureGroupIsIdempotent(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	if err := EnsureGroup(ctx, client, "pipeline:tasks", "pipeline-workers"); err != nil {
		t.Fatalf("first EnsureGroup: %v", err)
	}
	if err := EnsureGroup(ctx, client, "pipeline:tasks", "pipeline-workers"); err != nil {
		t.Fatalf("second EnsureGroup: %v", err)
	}
}

func TestParseTaskMissingPayload(t *testing.T) {
	t.Parallel()

	_, err := parseTask(redis.XMessage{ID: "1-0", Values: map[string]any{"kind": "fetch"}})
	if err == nil {
		t.Fatal("expected an error for a message without payload")
	}

	_, err = parseTask(redis.XMessage{ID: "2-0", Values: map[string]any{"payload": "{not json"}})
	if err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}
