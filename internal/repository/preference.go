package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/redesocial/engine/internal/model"
)

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, userID string) (model.NotificationPreference, bool, error) {
	query := `
		SELECT user_id, likes_enabled, comments_enabled, follows_enabled,
		       push_enabled, fcm_token, apns_token, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`
	var pref model.NotificationPreference
	err := r.db.GetContext(ctx, &pref, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotificationPreference{}, false, nil
	}
	if err != nil {
		return model.NotificationPreference{}, false, fmt.Errorf("get preferences: %w", err)
	}
	return pref, true, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref model.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences
			(user_id, likes_enabled, comments_enabled, follows_enabled, push_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			likes_enabled    = EXCLUDED.likes_enabled,
			comments_enabled = EXCLUDED.comments_enabled,
			follows_enabled  = EXCLUDED.follows_enabled,
			push_enabled     = EXCLUDED.push_enabled,
			updated_at       = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		pref.UserID, pref.LikesEnabled, pref.CommentsEnabled, pref.FollowsEnabled, pref.PushEnabled)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// SetPushToken stores the vendor token in the column matching the platform:
// android -> fcm_token, ios -> apns_token.
func (r *preferenceRepository) SetPushToken(ctx context.Context, userID, platform, token string) error {
	column := "fcm_token"
	if platform == "ios" {
		column = "apns_token"
	}

	query := fmt.Sprintf(`
		INSERT INTO notification_preferences (user_id, %s, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			%s = EXCLUDED.%s,
			updated_at = now()
	`, column, column, column)

	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("set push token: %w", err)
	}
	return nil
}
