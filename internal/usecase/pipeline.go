package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/fetch"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/rewrite"
)

// ErrNothingToRewrite rejects rewrite triggers for items without raw content.
var ErrNothingToRewrite = errors.New("item has no raw content to rewrite")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Items           ports.ContentRepository
	Fetchers        *fetch.Registry
	Rewriters       *rewrite.Registry
	DefaultProvider string
	DefaultStyle    string
	Logger          *slog.Logger
}

// Pipeline owns the per-item state machine: pending -> scraped -> rewritten,
// with failed reachable from either non-terminal state. Completion handlers
// return the next task to enqueue; the caller performs the actual dispatch,
// which keeps the state machine testable without a live queue.
type Pipeline struct {
	items           ports.ContentRepository
	fetchers        *fetch.Registry
	rewriters       *rewrite.Registry
	defaultProvider string
	defaultStyle    string
	logger          *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		items:           deps.Items,
		fetchers:        deps.Fetchers,
		rewriters:       deps.Rewriters,
		defaultProvider: deps.DefaultProvider,
		defaultStyle:    deps.DefaultStyle,
		logger:          logger,
	}
}

// CreateItem persists a pending item and returns the fetch task to enqueue.
func (p *Pipeline) CreateItem(ctx context.Context, sourceURL string, mode domain.FetchMode, metadata string) (domain.ContentItem, domain.Task, error) {
	if mode == "" {
		mode = domain.FetchStatic
	}

	now := time.Now().UTC()
	item := domain.ContentItem{
		ID:        uuid.New().String(),
		SourceURL: sourceURL,
		FetchMode: mode,
		Status:    domain.StatusPending,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := p.items.Create(ctx, item)
	if err != nil {
		return domain.ContentItem{}, domain.Task{}, fmt.Errorf("create item: %w", err)
	}

	p.logger.Info("item created", "item_id", created.ID, "url", sourceURL, "mode", mode)
	return created, domain.NewFetchTask(created.ID, sourceURL, mode), nil
}

// HandleFetch completes the fetch stage for an item. Stage-level fetch
// failures are recovered locally by marking the item failed; only
// persistence errors propagate so the dispatch boundary can redeliver.
func (p *Pipeline) HandleFetch(ctx context.Context, itemID, url string, mode domain.FetchMode) (*domain.Task, error) {
	item, err := p.items.GetByID(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("fetch for missing item, skipping", "item_id", itemID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", itemID, err)
	}

	if item.Status.Terminal() {
		p.logger.Info("fetch redelivered for terminal item, skipping", "item_id", itemID, "status", item.Status)
		return nil, nil
	}

	if url == "" {
		url = item.SourceURL
	}
	if mode == "" {
		mode = item.FetchMode
	}

	fetcher, err := p.fetchers.Resolve(mode)
	if err != nil {
		p.logger.Error("fetch strategy unavailable", "item_id", itemID, "mode", mode, "error", err)
		if err := p.items.MarkFailed(ctx, itemID); err != nil {
			return nil, fmt.Errorf("mark item %s failed: %w", itemID, err)
		}
		return nil, nil
	}

	result, err := fetcher.Fetch(ctx, url)
	if err != nil {
		p.logger.Error("fetch stage failed", "item_id", itemID, "url", url, "error", err)
		if err := p.items.MarkFailed(ctx, itemID); err != nil {
			return nil, fmt.Errorf("mark item %s failed: %w", itemID, err)
		}
		return nil, nil
	}

	if err := p.items.MarkScraped(ctx, itemID, result.Title, result.Body); err != nil {
		return nil, fmt.Errorf("persist scraped item %s: %w", itemID, err)
	}

	p.logger.Info("item scraped", "item_id", itemID, "title", result.Title)
	return taskPtr(domain.NewRewriteTask(itemID, p.defaultProvider, p.defaultStyle)), nil
}

// HandleRewrite completes the rewrite stage for an item. An empty raw body
// is a silent no-op. An unknown provider never reaches the network and never
// mutates status. Provider failures mark the item failed.
func (p *Pipeline) HandleRewrite(ctx context.Context, itemID, provider, style string) error {
	item, err := p.items.GetByID(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("rewrite for missing item, skipping", "item_id", itemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load item %s: %w", itemID, err)
	}

	if item.RawBody == "" {
		p.logger.Info("item has no raw content, nothing to rewrite", "item_id", itemID)
		return nil
	}
	if item.Status == domain.StatusRewritten {
		p.logger.Info("rewrite redelivered for rewritten item, skipping", "item_id", itemID)
		return nil
	}

	if provider == "" {
		provider = p.defaultProvider
	}
	if style == "" {
		style = p.defaultStyle
	}

	backend, err := p.rewriters.Resolve(provider)
	if err != nil {
		p.logger.Error("rewrite provider unsupported", "item_id", itemID, "provider", provider, "error", err)
		return nil
	}

	rewritten, err := backend.Rewrite(ctx, item.RawBody, style)
	if err != nil {
		p.logger.Error("rewrite stage failed", "item_id", itemID, "provider", provider, "error", err)
		if err := p.items.MarkFailed(ctx, itemID); err != nil {
			return fmt.Errorf("mark item %s failed: %w", itemID, err)
		}
		return nil
	}

	if err := p.items.MarkRewritten(ctx, itemID, rewritten); err != nil {
		return fmt.Errorf("persist rewritten item %s: %w", itemID, err)
	}

	p.logger.Info("item rewritten", "item_id", itemID, "provider", provider)
	return nil
}

// TriggerRewrite validates a manual rewrite request and returns the task to
// enqueue. It is accepted whenever the item has raw content, which is also
// the explicit retry path after a failed rewrite.
func (p *Pipeline) TriggerRewrite(ctx context.Context, itemID, provider, style string) (domain.Task, error) {
	item, err := p.items.GetByID(ctx, itemID)
	if err != nil {
		return domain.Task{}, err
	}

	if item.RawBody == "" {
		return domain.Task{}, ErrNothingToRewrite
	}

	if provider == "" {
		provider = p.defaultProvider
	}
	if style == "" {
		style = p.defaultStyle
	}

	return domain.NewRewriteTask(itemID, provider, style), nil
}

func taskPtr(t domain.Task) *domain.Task {
	return &t
}
