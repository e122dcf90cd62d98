package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/cache"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/repository"
)

// FeedService assembles ranked feeds for users and the trending feed.
type FeedService interface {
	// GetFeed returns a ranked page of posts from the user's followings.
	// cursor is empty for the first page.
	GetFeed(ctx context.Context, userID, cursor string, limit int) (model.FeedResponse, error)

	// GetTrending returns the globally popular posts inside the trending
	// window, ranked by relevance.
	GetTrending(ctx context.Context, limit int) ([]model.Post, error)
}

type feedService struct {
	posts       repository.PostMetadataRepository
	follows     repository.FollowRepository
	scores      ScoreService
	cache       cache.FeedCache
	feedTTL     time.Duration
	pageSize    int
	maxFeedSize int
	trendingAge time.Duration
}

func NewFeedService(
	posts repository.PostMetadataRepository,
	follows repository.FollowRepository,
	scores ScoreService,
	feedCache cache.FeedCache,
	feedTTL time.Duration,
	pageSize int,
	maxFeedSize int,
	trendingWindowDays int,
) FeedService {
	return &feedService{
		posts:       posts,
		follows:     follows,
		scores:      scores,
		cache:       feedCache,
		feedTTL:     feedTTL,
		pageSize:    pageSize,
		maxFeedSize: maxFeedSize,
		trendingAge: time.Duration(trendingWindowDays) * 24 * time.Hour,
	}
}

func (s *feedService) GetFeed(ctx context.Context, userID, cursor string, limit int) (model.FeedResponse, error) {
	if limit < 1 || limit > 100 {
		limit = s.pageSize
	}

	// Only the first page is served from cache. Cursor pages always query.
	if cursor == "" {
		if cached, found, err := s.cache.GetFeed(ctx, cache.FeedKey(userID)); err == nil && found {
			return pageOf(cached, limit), nil
		} else if err != nil {
			logrus.Warnf("[Feed] Cache read FAILED: user=%s err=%v", userID, err)
		}
	}

	followingIDs, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return model.FeedResponse{}, err
	}
	if len(followingIDs) == 0 {
		return model.FeedResponse{Posts: []model.Post{}, HasMore: false}, nil
	}

	var metas []model.PostMetadata
	if cursor == "" {
		metas, err = s.posts.ListByAuthors(ctx, followingIDs, s.maxFeedSize)
	} else {
		metas, err = s.posts.ListByAuthorsAfter(ctx, followingIDs, cursor, s.maxFeedSize)
	}
	if err != nil {
		return model.FeedResponse{}, err
	}

	ranked := s.rank(ctx, metas)

	if cursor == "" {
		if err := s.cache.SetFeed(ctx, cache.FeedKey(userID), ranked, s.feedTTL); err != nil {
			logrus.Warnf("[Feed] Cache write FAILED: user=%s err=%v", userID, err)
		}
	}
	return pageOf(ranked, limit), nil
}

// rank scores each post and orders by score desc, breaking ties on recency.
func (s *feedService) rank(ctx context.Context, metas []model.PostMetadata) []model.Post {
	posts := make([]model.Post, 0, len(metas))
	for _, meta := range metas {
		score, err := s.scores.Score(ctx, meta.PostID)
		if err != nil {
			logrus.Warnf("[Feed] Score FAILED: post=%s err=%v", meta.PostID, err)
			score = 0
		}
		posts = append(posts, model.Post{
			ID:             meta.PostID,
			UserID:         meta.UserID,
			LikesCount:     meta.LikesCount,
			CommentsCount:  meta.CommentsCount,
			SharesCount:    meta.SharesCount,
			CreatedAt:      meta.CreatedAt,
			RelevanceScore: score,
		})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].RelevanceScore != posts[j].RelevanceScore {
			return posts[i].RelevanceScore > posts[j].RelevanceScore
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

// pageOf slices the first limit entries off a ranked list. The cursor is the
// last returned post id when more entries remain.
func pageOf(ranked []model.Post, limit int) model.FeedResponse {
	if len(ranked) <= limit {
		return model.FeedResponse{Posts: ranked, HasMore: false}
	}

	page := ranked[:limit]
	last := page[len(page)-1].ID
	return model.FeedResponse{Posts: page, Cursor: &last, HasMore: true}
}

func (s *feedService) GetTrending(ctx context.Context, limit int) ([]model.Post, error) {
	if limit < 1 || limit > 100 {
		limit = s.pageSize
	}

	if cached, found, err := s.cache.GetFeed(ctx, cache.TrendingKey); err == nil && found {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	} else if err != nil {
		logrus.Warnf("[Feed] Trending cache read FAILED: err=%v", err)
	}

	// Fetch twice the page from the raw-engagement pre-rank, then re-order
	// by the decayed relevance score.
	since := time.Now().Add(-s.trendingAge)
	metas, err := s.posts.ListTrending(ctx, since, limit*2)
	if err != nil {
		return nil, err
	}

	ranked := s.rank(ctx, metas)
	if err := s.cache.SetFeed(ctx, cache.TrendingKey, ranked, s.feedTTL); err != nil {
		logrus.Warnf("[Feed] Trending cache write FAILED: err=%v", err)
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
