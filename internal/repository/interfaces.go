package repository

import (
	"context"
	"time"

	"github.com/redesocial/engine/internal/model"
)

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n model.NotificationCreate) (string, error)

	// FindRecentAggregatable returns the newest comment notification for the
	// (recipient, target) pair created at or after windowStart.
	// found=false when no candidate row exists.
	FindRecentAggregatable(ctx context.Context, userID, targetID string, windowStart time.Time) (model.Notification, bool, error)

	// Aggregate folds one more comment into an existing notification: the kind
	// becomes comment_aggregated, the count is incremented atomically, and the
	// title/body are re-templated for the new count. Returns the new count.
	Aggregate(ctx context.Context, id string) (int, error)

	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]model.Notification, int, error)
	GetByID(ctx context.Context, userID, id string) (model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error

	// DeleteOlderThan removes notifications created before the cutoff and
	// returns how many rows were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PreferenceRepository persists notification preference documents.
type PreferenceRepository interface {
	// Get returns the stored preference document. found=false when the user
	// has no row, in which case defaults apply.
	Get(ctx context.Context, userID string) (model.NotificationPreference, bool, error)

	Upsert(ctx context.Context, pref model.NotificationPreference) error

	// SetPushToken upserts the vendor token for a platform (android|ios).
	SetPushToken(ctx context.Context, userID, platform, token string) error
}

// PostMetadataRepository reads the denormalized engagement rows.
type PostMetadataRepository interface {
	GetByID(ctx context.Context, postID string) (model.PostMetadata, error)

	// ListByAuthors returns the newest rows authored by any of the given
	// users, ordered by created_at desc.
	ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]model.PostMetadata, error)

	// ListByAuthorsAfter is the cursor variant: rows with post_id > cursor.
	ListByAuthorsAfter(ctx context.Context, authorIDs []string, cursor string, limit int) ([]model.PostMetadata, error)

	// ListTrending returns rows created since the given time, pre-ranked by
	// likes + 2*comments + 3*shares, then created_at desc.
	ListTrending(ctx context.Context, since time.Time, limit int) ([]model.PostMetadata, error)
}

// FollowRepository reads the follow graph.
type FollowRepository interface {
	// GetFollowingIDs returns the users that userID follows.
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)

	// GetFollowerIDs returns the users that follow userID.
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
}
