package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/model"
	transport "github.com/redesocial/engine/internal/transport/http"
)

type mockFeedService struct {
	GetFeedFunc     func(ctx context.Context, userID, cursor string, limit int) (model.FeedResponse, error)
	GetTrendingFunc func(ctx context.Context, limit int) ([]model.Post, error)
}

func (m *mockFeedService) GetFeed(ctx context.Context, userID, cursor string, limit int) (model.FeedResponse, error) {
	return m.GetFeedFunc(ctx, userID, cursor, limit)
}

func (m *mockFeedService) GetTrending(ctx context.Context, limit int) ([]model.Post, error) {
	return m.GetTrendingFunc(ctx, limit)
}

type mockScoreService struct {
	ScoreFunc func(ctx context.Context, postID string) (float64, error)
}

func (m *mockScoreService) Score(ctx context.Context, postID string) (float64, error) {
	return m.ScoreFunc(ctx, postID)
}

func (m *mockScoreService) Compute(meta model.PostMetadata, now time.Time) float64 {
	return 0
}

type mockInvalidationService struct {
	InvalidateUserFeedFunc func(ctx context.Context, userID string) (bool, error)
}

func (m *mockInvalidationService) InvalidateUserFeed(ctx context.Context, userID string) (bool, error) {
	return m.InvalidateUserFeedFunc(ctx, userID)
}

func (m *mockInvalidationService) InvalidateFollowerFeeds(ctx context.Context, authorID string) (int, error) {
	return 0, nil
}

func (m *mockInvalidationService) InvalidateInteraction(ctx context.Context, postID string) error {
	return nil
}

func feedServer(feeds *mockFeedService, scores *mockScoreService, invalidation *mockInvalidationService) http.Handler {
	health := handler.NewHealthHandler("recommendation-engine", nil)
	return transport.NewFeedRouter(handler.NewFeedHandler(feeds, scores, invalidation), health)
}

func TestGetFeed_PassesCursorAndLimit(t *testing.T) {
	// ARRANGE
	var gotUser, gotCursor string
	var gotLimit int
	feeds := &mockFeedService{
		GetFeedFunc: func(ctx context.Context, userID, cursor string, limit int) (model.FeedResponse, error) {
			gotUser, gotCursor, gotLimit = userID, cursor, limit
			return model.FeedResponse{Posts: []model.Post{}}, nil
		},
	}
	router := feedServer(feeds, &mockScoreService{}, &mockInvalidationService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/user-1?cursor=post-9&limit=5", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" || gotCursor != "post-9" || gotLimit != 5 {
		t.Errorf("unexpected params: user=%s cursor=%s limit=%d", gotUser, gotCursor, gotLimit)
	}
}

func TestScoreEndpoint_RequiresPostID(t *testing.T) {
	// ARRANGE
	scores := &mockScoreService{
		ScoreFunc: func(ctx context.Context, postID string) (float64, error) {
			t.Fatal("score must not be computed without a post id")
			return 0, nil
		},
	}
	router := feedServer(&mockFeedService{}, scores, &mockInvalidationService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"user_id":"user-1"}`))
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without post_id, got %d", rec.Code)
	}
}

func TestScoreEndpoint_ReturnsScore(t *testing.T) {
	// ARRANGE
	scores := &mockScoreService{
		ScoreFunc: func(ctx context.Context, postID string) (float64, error) {
			return 12.5, nil
		},
	}
	router := feedServer(&mockFeedService{}, scores, &mockInvalidationService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/score",
		strings.NewReader(`{"user_id":"user-1","post_id":"post-1"}`))
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp model.ScoreResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PostID != "post-1" || resp.RelevanceScore != 12.5 {
		t.Errorf("unexpected score payload: %+v", resp)
	}
}

func TestInvalidateCacheEndpoint(t *testing.T) {
	// ARRANGE
	var gotUser string
	invalidation := &mockInvalidationService{
		InvalidateUserFeedFunc: func(ctx context.Context, userID string) (bool, error) {
			gotUser = userID
			return true, nil
		},
	}
	router := feedServer(&mockFeedService{}, &mockScoreService{}, invalidation)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invalidate-cache/user-1", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" {
		t.Errorf("expected invalidation for user-1, got %q", gotUser)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "success" {
		t.Errorf("expected status=success, got %q", body["status"])
	}
}
