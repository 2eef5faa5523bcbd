package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ContentStatus enumerates pipeline milestones for a content item.
type ContentStatus string

const (
	StatusPending   ContentStatus = "pending"
	StatusScraped   ContentStatus = "scraped"
	StatusRewritten ContentStatus = "rewritten"
	StatusFailed    ContentStatus = "failed"
)

// Terminal reports whether no automatic transition leaves the status.
func (s ContentStatus) Terminal() bool {
	return s == StatusRewritten || s == StatusFailed
}

// FetchMode selects the strategy used to retrieve a source URL.
type FetchMode string

const (
	FetchStatic   FetchMode = "static"
	FetchRendered FetchMode = "rendered"
)

// ContentItem is the unit moving through the pipeline. The orchestrator is
// the only writer of its status and stage fields.
type ContentItem struct {
	ID             string
	SourceURL      string
	FetchMode      FetchMode
	RawTitle       string
	RawBody        string
	RewrittenTitle string
	RewrittenBody  string
	Status         ContentStatus
	Metadata       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
