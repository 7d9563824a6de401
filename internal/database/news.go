package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const newsColumns = `id, title, slug, excerpt, content, image, published_date, source_url, created_at`

func scanNews(row pgx.Row) (*News, error) {
	var n News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.Excerpt,
		&n.Content,
		&n.Image,
		&n.PublishedDate,
		&n.SourceURL,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNews(rows pgx.Rows) ([]*News, error) {
	defer rows.Close()

	var items []*News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news: %w", err)
	}

	return items, nil
}

// CreateNews inserts a news record unless one with the same slug already exists.
// It reports false when the slug was taken, which is not an error.
func (db *DB) CreateNews(ctx context.Context, n *News) (bool, error) {
	query := `
		INSERT INTO news (title, slug, excerpt, content, image, published_date, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id, created_at
	`

	err := db.pool.QueryRow(ctx, query,
		n.Title,
		n.Slug,
		n.Excerpt,
		n.Content,
		n.Image,
		n.PublishedDate,
		n.SourceURL,
	).Scan(&n.ID, &n.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create news: %w", err)
	}

	return true, nil
}

// NewsExists checks if a news record with the given slug already exists
func (db *DB) NewsExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM news WHERE slug = $1)`

	var exists bool
	err := db.pool.QueryRow(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check news existence: %w", err)
	}

	return exists, nil
}

// GetNewsBySlug retrieves a news record by its slug
func (db *DB) GetNewsBySlug(ctx context.Context, slug string) (*News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE slug = $1`

	n, err := scanNews(db.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	return n, nil
}

// ListNews retrieves news newest first. A limit of 0 returns everything.
func (db *DB) ListNews(ctx context.Context, limit int) ([]*News, error) {
	query := `SELECT ` + newsColumns + ` FROM news ORDER BY published_date DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}

	return collectNews(rows)
}

// GetRecentNews retrieves news published on or after since
func (db *DB) GetRecentNews(ctx context.Context, since time.Time, limit int) ([]*News, error) {
	query := `
		SELECT ` + newsColumns + `
		FROM news
		WHERE published_date >= $1
		ORDER BY published_date DESC, id DESC
		LIMIT $2
	`

	rows, err := db.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent news: %w", err)
	}

	return collectNews(rows)
}
