package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
)

const (
	// FeedKeyPrefix is the key prefix for per-user ranked feed pages
	FeedKeyPrefix = "feed:"

	// ScoreKeyPrefix is the key prefix for cached relevance scores
	ScoreKeyPrefix = "score:"

	// TrendingKey holds the globally popular feed
	TrendingKey = "feed:trending"
)

// FeedCache stores ranked feed pages and relevance scores.
// Using an interface enables testing with mocks and potential future backends.
type FeedCache interface {
	// GetFeed returns the cached ranked list for a key, or found=false on a
	// miss. A malformed cache entry is reported as a miss.
	GetFeed(ctx context.Context, key string) (posts []model.Post, found bool, err error)

	// SetFeed stores a ranked list under the key with the given TTL.
	SetFeed(ctx context.Context, key string, posts []model.Post, ttl time.Duration) error

	// DeleteFeed removes a cached feed. Returns whether a key was removed.
	DeleteFeed(ctx context.Context, key string) (bool, error)

	// GetScore returns a cached relevance score. found=false on a miss or
	// when the stored value is not numeric.
	GetScore(ctx context.Context, postID string) (score float64, found bool, err error)

	// SetScore stores a relevance score with the given TTL.
	SetScore(ctx context.Context, postID string, score float64, ttl time.Duration) error

	// DeleteScore removes a cached score.
	DeleteScore(ctx context.Context, postID string) error
}

// FeedKey returns the cache key for a user's feed.
func FeedKey(userID string) string {
	return FeedKeyPrefix + userID
}

// ScoreKey returns the cache key for a post's score.
func ScoreKey(postID string) string {
	return ScoreKeyPrefix + postID
}

// RedisFeedCache implements FeedCache on Redis strings holding JSON.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

type feedEntry struct {
	Posts []model.Post `json:"posts"`
}

func (c *RedisFeedCache) GetFeed(ctx context.Context, key string) ([]model.Post, bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		logrus.Errorf("[FeedCache] GetFeed FAILED: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("get feed: %w", err)
	}

	var entry feedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Corrupt entry behaves like a miss so callers fall through to recompute.
		logrus.Warnf("[FeedCache] GetFeed parse error: key=%s err=%v", key, err)
		return nil, false, nil
	}

	logrus.Debugf("[FeedCache] GetFeed HIT: key=%s posts=%d", key, len(entry.Posts))
	return entry.Posts, true, nil
}

func (c *RedisFeedCache) SetFeed(ctx context.Context, key string, posts []model.Post, ttl time.Duration) error {
	raw, err := json.Marshal(feedEntry{Posts: posts})
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logrus.Errorf("[FeedCache] SetFeed FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set feed: %w", err)
	}
	logrus.Debugf("[FeedCache] SetFeed OK: key=%s posts=%d ttl=%v", key, len(posts), ttl)
	return nil
}

func (c *RedisFeedCache) DeleteFeed(ctx context.Context, key string) (bool, error) {
	removed, err := c.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Errorf("[FeedCache] DeleteFeed FAILED: key=%s err=%v", key, err)
		return false, fmt.Errorf("delete feed: %w", err)
	}
	return removed > 0, nil
}

func (c *RedisFeedCache) GetScore(ctx context.Context, postID string) (float64, bool, error) {
	raw, err := c.client.Get(ctx, ScoreKey(postID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		logrus.Errorf("[FeedCache] GetScore FAILED: post=%s err=%v", postID, err)
		return 0, false, fmt.Errorf("get score: %w", err)
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Non-numeric cache contents trigger recomputation.
		logrus.Warnf("[FeedCache] GetScore corrupt value: post=%s value=%q", postID, raw)
		return 0, false, nil
	}
	return score, true, nil
}

func (c *RedisFeedCache) SetScore(ctx context.Context, postID string, score float64, ttl time.Duration) error {
	value := strconv.FormatFloat(score, 'f', -1, 64)
	if err := c.client.Set(ctx, ScoreKey(postID), value, ttl).Err(); err != nil {
		logrus.Errorf("[FeedCache] SetScore FAILED: post=%s err=%v", postID, err)
		return fmt.Errorf("set score: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) DeleteScore(ctx context.Context, postID string) error {
	if err := c.client.Del(ctx, ScoreKey(postID)).Err(); err != nil {
		logrus.Errorf("[FeedCache] DeleteScore FAILED: post=%s err=%v", postID, err)
		return fmt.Errorf("delete score: %w", err)
	}
	return nil
}
