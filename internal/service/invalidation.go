package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/cache"
	"github.com/redesocial/engine/internal/repository"
)

// InvalidationService drops stale cache entries when content changes.
type InvalidationService interface {
	// InvalidateUserFeed drops one user's cached feed. Returns whether an
	// entry existed.
	InvalidateUserFeed(ctx context.Context, userID string) (bool, error)

	// InvalidateFollowerFeeds drops the cached feed of every follower of
	// authorID. Returns how many entries were removed.
	InvalidateFollowerFeeds(ctx context.Context, authorID string) (int, error)

	// InvalidateInteraction drops the cached score of a post and the
	// trending feed after an engagement change.
	InvalidateInteraction(ctx context.Context, postID string) error
}

type invalidationService struct {
	follows repository.FollowRepository
	cache   cache.FeedCache
}

func NewInvalidationService(follows repository.FollowRepository, feedCache cache.FeedCache) InvalidationService {
	return &invalidationService{follows: follows, cache: feedCache}
}

func (s *invalidationService) InvalidateUserFeed(ctx context.Context, userID string) (bool, error) {
	removed, err := s.cache.DeleteFeed(ctx, cache.FeedKey(userID))
	if err != nil {
		return false, err
	}
	logrus.Debugf("[Invalidation] User feed invalidated: user=%s removed=%t", userID, removed)
	return removed, nil
}

func (s *invalidationService) InvalidateFollowerFeeds(ctx context.Context, authorID string) (int, error) {
	followerIDs, err := s.follows.GetFollowerIDs(ctx, authorID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, followerID := range followerIDs {
		ok, err := s.cache.DeleteFeed(ctx, cache.FeedKey(followerID))
		if err != nil {
			logrus.Warnf("[Invalidation] Feed delete FAILED: user=%s err=%v", followerID, err)
			continue
		}
		if ok {
			removed++
		}
	}

	logrus.Infof("[Invalidation] Follower feeds invalidated: author=%s followers=%d removed=%d",
		authorID, len(followerIDs), removed)
	return removed, nil
}

func (s *invalidationService) InvalidateInteraction(ctx context.Context, postID string) error {
	if err := s.cache.DeleteScore(ctx, postID); err != nil {
		return err
	}
	if _, err := s.cache.DeleteFeed(ctx, cache.TrendingKey); err != nil {
		return err
	}
	logrus.Debugf("[Invalidation] Interaction invalidated: post=%s", postID)
	return nil
}
