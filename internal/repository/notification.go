package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/redesocial/engine/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification and returns its id.
func (r *notificationRepository) Create(ctx context.Context, n model.NotificationCreate) (string, error) {
	id := uuid.NewString()
	count := n.AggregatedCount
	if count < 1 {
		count = 1
	}

	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, actor_id, target_id, metadata, aggregated_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`
	_, err := r.db.ExecContext(ctx, query,
		id, n.UserID, n.Kind, n.Title, n.Body, n.ActorID, n.TargetID, n.Metadata, count)
	if err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// FindRecentAggregatable returns the newest comment notification for the
// (recipient, target) pair inside the aggregation window.
func (r *notificationRepository) FindRecentAggregatable(ctx context.Context, userID, targetID string, windowStart time.Time) (model.Notification, bool, error) {
	query := `
		SELECT id, user_id, kind, title, body, actor_id, target_id, metadata,
		       is_read, read_at, aggregated_count, created_at
		FROM notifications
		WHERE user_id = $1
		  AND target_id = $2
		  AND kind IN ('comment', 'comment_aggregated')
		  AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	var n model.Notification
	err := r.db.GetContext(ctx, &n, query, userID, targetID, windowStart)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, false, nil
	}
	if err != nil {
		return model.Notification{}, false, fmt.Errorf("find aggregatable comment: %w", err)
	}
	return n, true, nil
}

// Aggregate increments the rolling count and re-templates the display strings.
// The increment runs against the stored value so concurrent aggregation keeps
// the count monotonic.
func (r *notificationRepository) Aggregate(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin aggregate: %w", err)
	}
	defer tx.Rollback()

	var newCount int
	err = tx.GetContext(ctx, &newCount, `
		UPDATE notifications
		SET kind = 'comment_aggregated',
		    aggregated_count = aggregated_count + 1
		WHERE id = $1
		RETURNING aggregated_count
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrNotificationNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("aggregate notification: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE notifications SET title = $2, body = $3 WHERE id = $1
	`, id, model.AggregatedCommentTitle(newCount), model.AggregatedCommentBody(newCount))
	if err != nil {
		return 0, fmt.Errorf("retemplate notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit aggregate: %w", err)
	}
	return newCount, nil
}

// List returns a page of notifications ordered by created_at desc, plus the
// total row count for the filter.
func (r *notificationRepository) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]model.Notification, int, error) {
	filter := `WHERE user_id = $1`
	if unreadOnly {
		filter += ` AND is_read = FALSE`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+filter, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	offset := (page - 1) * limit
	query := `
		SELECT id, user_id, kind, title, body, actor_id, target_id, metadata,
		       is_read, read_at, aggregated_count, created_at
		FROM notifications ` + filter + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, userID, id string) (model.Notification, error) {
	query := `
		SELECT id, user_id, kind, title, body, actor_id, target_id, metadata,
		       is_read, read_at, aggregated_count, created_at
		FROM notifications
		WHERE id = $1 AND user_id = $2
	`
	var n model.Notification
	err := r.db.GetContext(ctx, &n, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, model.ErrNotificationNotFound
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}

// DeleteOlderThan is the retention sweep.
func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	return removed, nil
}
