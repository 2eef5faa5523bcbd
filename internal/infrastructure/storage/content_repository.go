package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const contentColumns = `id, source_url, fetch_mode, COALESCE(raw_title, ''), COALESCE(raw_body, ''),
COALESCE(rewritten_title, ''), COALESCE(rewritten_body, ''), status, COALESCE(metadata, ''), created_at, updated_at`

// ContentRepository persists content items in Postgres. Every stage update
// is a single UPDATE statement, so a stage either lands completely or not
// at all.
type ContentRepository struct {
	db DB
}

var _ ports.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository wires a database handle.
func NewContentRepository(db DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a new item.
func (r *ContentRepository) Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	query, args, err := builder.
		Insert("content_items").
		Columns("id", "source_url", "fetch_mode", "status", "metadata", "created_at", "updated_at").
		Values(item.ID, item.SourceURL, item.FetchMode, item.Status, item.Metadata, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return domain.ContentItem{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// GetByID loads one item.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (domain.ContentItem, error) {
	query, args, err := builder.
		Select(contentColumns).
		From("content_items").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("build select: %w", err)
	}

	item, err := scanContentItem(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ContentItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// List returns items newest first.
func (r *ContentRepository) List(ctx context.Context, offset, limit int) ([]domain.ContentItem, error) {
	if limit <= 0 {
		limit = 100
	}
	query, args, err := builder.
		Select(contentColumns).
		From("content_items").
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

// MarkScraped stores the raw stage output together with the scraped status.
func (r *ContentRepository) MarkScraped(ctx context.Context, id, rawTitle, rawBody string) error {
	query, args, err := builder.
		Update("content_items").
		Set("raw_title", rawTitle).
		Set("raw_body", rawBody).
		Set("status", domain.StatusScraped).
		Set("updated_at", nowExpr()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, query, args, id)
}

// MarkRewritten stores the rewrite stage output together with the rewritten
// status.
func (r *ContentRepository) MarkRewritten(ctx context.Context, id, rewrittenBody string) error {
	query, args, err := builder.
		Update("content_items").
		Set("rewritten_body", rewrittenBody).
		Set("status", domain.StatusRewritten).
		Set("updated_at", nowExpr()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, query, args, id)
}

// MarkFailed records a terminal stage failure.
func (r *ContentRepository) MarkFailed(ctx context.Context, id string) error {
	query, args, err := builder.
		Update("content_items").
		Set("status", domain.StatusFailed).
		Set("updated_at", nowExpr()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, query, args, id)
}

// Delete removes an item. The pipeline core never calls this; only the HTTP
// layer does.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	query, args, err := builder.
		Delete("content_items").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return r.exec(ctx, query, args, id)
}

func (r *ContentRepository) exec(ctx context.Context, query string, args []any, id string) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanContentItem(row pgx.Row) (domain.ContentItem, error) {
	var item domain.ContentItem
	err := row.Scan(
		&item.ID,
		&item.SourceURL,
		&item.FetchMode,
		&item.RawTitle,
		&item.RawBody,
		&item.RewrittenTitle,
		&item.RewrittenBody,
		&item.Status,
		&item.Metadata,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}
