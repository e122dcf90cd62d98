package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Notification kinds
const (
	NotificationKindLike              = "like"
	NotificationKindComment           = "comment"
	NotificationKindCommentAggregated = "comment_aggregated"
	NotificationKindFollow            = "follow"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Metadata is a free-form mapping stored as JSONB alongside a notification.
type Metadata map[string]any

// Value implements driver.Valuer so sqlx can persist Metadata as JSONB.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for reading JSONB back into Metadata.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("metadata: unexpected type %T", src)
	}
	return json.Unmarshal(b, m)
}

// Notification is a single notification row.
type Notification struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"` // recipient
	Kind            string     `db:"kind" json:"type"`
	Title           string     `db:"title" json:"title"`
	Body            string     `db:"body" json:"body"`
	ActorID         string     `db:"actor_id" json:"actor_id"` // who triggered it
	TargetID        *string    `db:"target_id" json:"target_id,omitempty"`
	Metadata        Metadata   `db:"metadata" json:"metadata"`
	IsRead          bool       `db:"is_read" json:"is_read"`
	ReadAt          *time.Time `db:"read_at" json:"read_at,omitempty"`
	AggregatedCount int        `db:"aggregated_count" json:"aggregated_count"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// NotificationCreate carries the fields needed to insert a notification.
type NotificationCreate struct {
	UserID          string
	Kind            string
	Title           string
	Body            string
	ActorID         string
	TargetID        *string
	Metadata        Metadata
	AggregatedCount int
}

// NotificationPreference holds per-user delivery switches and push tokens.
// A user without a stored row gets DefaultPreference.
type NotificationPreference struct {
	UserID          string     `db:"user_id" json:"user_id"`
	LikesEnabled    bool       `db:"likes_enabled" json:"likes_enabled"`
	CommentsEnabled bool       `db:"comments_enabled" json:"comments_enabled"`
	FollowsEnabled  bool       `db:"follows_enabled" json:"follows_enabled"`
	PushEnabled     bool       `db:"push_enabled" json:"push_enabled"`
	FCMToken        *string    `db:"fcm_token" json:"fcm_token,omitempty"`
	APNSToken       *string    `db:"apns_token" json:"apns_token,omitempty"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DefaultPreference returns the preference document implied by an absent row:
// everything enabled, no tokens.
func DefaultPreference(userID string) NotificationPreference {
	return NotificationPreference{
		UserID:          userID,
		LikesEnabled:    true,
		CommentsEnabled: true,
		FollowsEnabled:  true,
		PushEnabled:     true,
	}
}

// PreferenceUpdate is a partial preference update; nil fields are left unchanged.
type PreferenceUpdate struct {
	LikesEnabled    *bool `json:"likes_enabled,omitempty"`
	CommentsEnabled *bool `json:"comments_enabled,omitempty"`
	FollowsEnabled  *bool `json:"follows_enabled,omitempty"`
	PushEnabled     *bool `json:"push_enabled,omitempty"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NotificationListResponse is the paginated listing payload.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
}

// PushTokenRequest registers an FCM or APNs token.
type PushTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"` // android | ios
}
