package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/cache"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/repository"
)

// ScoreWeights are the engagement multipliers of the relevance formula.
type ScoreWeights struct {
	Likes    float64
	Comments float64
	Shares   float64
	// DecayHours is the e-folding time of the recency decay.
	DecayHours float64
}

// ScoreService computes and caches post relevance scores.
type ScoreService interface {
	// Score returns the relevance score for a post, cache-first. An unknown
	// post scores 0.0 and is not an error.
	Score(ctx context.Context, postID string) (float64, error)

	// Compute evaluates the relevance formula at the given instant.
	Compute(meta model.PostMetadata, now time.Time) float64
}

type scoreService struct {
	posts    repository.PostMetadataRepository
	cache    cache.FeedCache
	weights  ScoreWeights
	cacheTTL time.Duration
}

func NewScoreService(posts repository.PostMetadataRepository, feedCache cache.FeedCache, weights ScoreWeights, cacheTTL time.Duration) ScoreService {
	return &scoreService{
		posts:    posts,
		cache:    feedCache,
		weights:  weights,
		cacheTTL: cacheTTL,
	}
}

// Compute multiplies weighted engagement by an exponential recency decay.
// Older posts need proportionally more engagement to keep the same score.
func (s *scoreService) Compute(meta model.PostMetadata, now time.Time) float64 {
	engagement := s.weights.Likes*float64(meta.LikesCount) +
		s.weights.Comments*float64(meta.CommentsCount) +
		s.weights.Shares*float64(meta.SharesCount)

	ageHours := now.Sub(meta.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return engagement * math.Exp(-ageHours/s.weights.DecayHours)
}

func (s *scoreService) Score(ctx context.Context, postID string) (float64, error) {
	if cached, found, err := s.cache.GetScore(ctx, postID); err == nil && found {
		return cached, nil
	} else if err != nil {
		// Cache trouble degrades to recomputation.
		logrus.Warnf("[Score] Cache read FAILED: post=%s err=%v", postID, err)
	}

	meta, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, model.ErrPostNotFound) {
		return 0.0, nil
	}
	if err != nil {
		return 0, err
	}

	score := s.Compute(meta, time.Now())
	if err := s.cache.SetScore(ctx, postID, score, s.cacheTTL); err != nil {
		logrus.Warnf("[Score] Cache write FAILED: post=%s err=%v", postID, err)
	}
	return score, nil
}
