package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// GetFollowingIDs returns the users that userID follows.
func (r *followRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT following_id FROM followers WHERE follower_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get following ids: %w", err)
	}
	return ids, nil
}

// GetFollowerIDs returns the users that follow userID.
func (r *followRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT follower_id FROM followers WHERE following_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}
