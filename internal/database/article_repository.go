package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amosWeiskopf/newsharvest/internal/models"
)

// ArticleRepository handles database operations for harvested articles.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// MaxArticleID returns the highest stored article identifier for a
// source, or 0 when the source has no stored articles.
func (r *ArticleRepository) MaxArticleID(ctx context.Context, sourceID int64) (int64, error) {
	var maxID int64
	query := `SELECT COALESCE(MAX(article_id), 0) FROM articles WHERE source_id = $1`

	if err := r.db.GetContext(ctx, &maxID, query, sourceID); err != nil {
		return 0, fmt.Errorf("failed to query max article id: %w", err)
	}

	return maxID, nil
}

// ExistingIDs returns which of the candidate identifiers are already
// stored for the source. Empty input yields an empty set without
// touching the database.
func (r *ArticleRepository) ExistingIDs(ctx context.Context, sourceID int64, ids []int64) (map[int64]struct{}, error) {
	existing := make(map[int64]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query := `SELECT article_id FROM articles WHERE source_id = $1 AND article_id = ANY($2)`

	var found []int64
	if err := r.db.SelectContext(ctx, &found, query, sourceID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to query existing article ids: %w", err)
	}

	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// Upsert inserts an article or replaces the stored row sharing its
// (source_id, article_id) identity. Conflicts are idempotent rather
// than errors, so concurrent writes of the same identifier are safe.
func (r *ArticleRepository) Upsert(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (
			source_id, article_id, sub_source, url, title, published_at,
			authors, paywalled, category, image_url, body
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source_id, article_id) DO UPDATE SET
			sub_source   = EXCLUDED.sub_source,
			url          = EXCLUDED.url,
			title        = EXCLUDED.title,
			published_at = EXCLUDED.published_at,
			authors      = EXCLUDED.authors,
			paywalled    = EXCLUDED.paywalled,
			category     = EXCLUDED.category,
			image_url    = EXCLUDED.image_url,
			body         = EXCLUDED.body,
			updated_at   = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		article.SourceID,
		article.ArticleID,
		article.SubSource,
		article.URL,
		article.Title,
		article.PublishedAt,
		article.Authors,
		article.Paywalled,
		article.Category,
		article.ImageURL,
		article.Body,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert article %d/%d: %w", article.SourceID, article.ArticleID, err)
	}

	return nil
}
