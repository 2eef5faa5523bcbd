package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskKind names a unit of pipeline work handed to the dispatch boundary.
type TaskKind string

const (
	TaskFetch         TaskKind = "fetch"
	TaskRewrite       TaskKind = "rewrite"
	TaskScheduledTick TaskKind = "scheduled_tick"
)

// Task describes one job for the at-least-once queue. It carries only
// primitive identifiers and strings, never object references.
type Task struct {
	ID         string    `json:"task_id"`
	Kind       TaskKind  `json:"kind"`
	ItemID     string    `json:"item_id,omitempty"`
	JobID      string    `json:"job_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Mode       FetchMode `json:"mode,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Style      string    `json:"style,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewFetchTask describes a fetch stage for an item.
func NewFetchTask(itemID, url string, mode FetchMode) Task {
	return Task{
		ID:         uuid.New().String(),
		Kind:       TaskFetch,
		ItemID:     itemID,
		URL:        url,
		Mode:       mode,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewRewriteTask describes a rewrite stage for an item.
func NewRewriteTask(itemID, provider, style string) Task {
	return Task{
		ID:         uuid.New().String(),
		Kind:       TaskRewrite,
		ItemID:     itemID,
		Provider:   provider,
		Style:      style,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewTickTask describes one execution of a scheduled job.
func NewTickTask(jobID string) Task {
	return Task{
		ID:         uuid.New().String(),
		Kind:       TaskScheduledTick,
		JobID:      jobID,
		EnqueuedAt: time.Now().UTC(),
	}
}
