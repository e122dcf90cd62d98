package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/redesocial/engine/internal/model"
)

type postMetadataRepository struct {
	db *sqlx.DB
}

func NewPostMetadataRepository(db *sqlx.DB) PostMetadataRepository {
	return &postMetadataRepository{db: db}
}

func (r *postMetadataRepository) GetByID(ctx context.Context, postID string) (model.PostMetadata, error) {
	query := `
		SELECT post_id, user_id, likes_count, comments_count, shares_count, created_at
		FROM post_metadata
		WHERE post_id = $1
	`
	var meta model.PostMetadata
	err := r.db.GetContext(ctx, &meta, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PostMetadata{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.PostMetadata{}, fmt.Errorf("get post metadata: %w", err)
	}
	return meta, nil
}

func (r *postMetadataRepository) ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]model.PostMetadata, error) {
	if len(authorIDs) == 0 {
		return []model.PostMetadata{}, nil
	}

	query := `
		SELECT post_id, user_id, likes_count, comments_count, shares_count, created_at
		FROM post_metadata
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows := []model.PostMetadata{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("list posts by authors: %w", err)
	}
	return rows, nil
}

// ListByAuthorsAfter pages with a post_id predicate. The cursor identifies the
// last returned row, not a position in the ranked output; see DESIGN.md.
func (r *postMetadataRepository) ListByAuthorsAfter(ctx context.Context, authorIDs []string, cursor string, limit int) ([]model.PostMetadata, error) {
	if len(authorIDs) == 0 {
		return []model.PostMetadata{}, nil
	}

	query := `
		SELECT post_id, user_id, likes_count, comments_count, shares_count, created_at
		FROM post_metadata
		WHERE user_id = ANY($1)
		  AND post_id > $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows := []model.PostMetadata{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), cursor, limit); err != nil {
		return nil, fmt.Errorf("list posts after cursor: %w", err)
	}
	return rows, nil
}

func (r *postMetadataRepository) ListTrending(ctx context.Context, since time.Time, limit int) ([]model.PostMetadata, error) {
	query := `
		SELECT post_id, user_id, likes_count, comments_count, shares_count, created_at
		FROM post_metadata
		WHERE created_at >= $1
		ORDER BY
			(likes_count + comments_count * 2 + shares_count * 3) DESC,
			created_at DESC
		LIMIT $2
	`
	rows := []model.PostMetadata{}
	if err := r.db.SelectContext(ctx, &rows, query, since, limit); err != nil {
		return nil, fmt.Errorf("list trending posts: %w", err)
	}
	return rows, nil
}
