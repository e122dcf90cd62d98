package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redesocial/engine/internal/model"
)

// Function-field mocks so each test overrides only what it exercises.

type mockNotificationRepo struct {
	CreateFunc                func(ctx context.Context, n model.NotificationCreate) (string, error)
	FindRecentAggregatableFn  func(ctx context.Context, userID, targetID string, windowStart time.Time) (model.Notification, bool, error)
	AggregateFunc             func(ctx context.Context, id string) (int, error)
	ListFunc                  func(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]model.Notification, int, error)
	GetByIDFunc               func(ctx context.Context, userID, id string) (model.Notification, error)
	MarkReadFunc              func(ctx context.Context, userID, id string) error
	DeleteFunc                func(ctx context.Context, userID, id string) error
	DeleteOlderThanFunc       func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n model.NotificationCreate) (string, error) {
	return m.CreateFunc(ctx, n)
}

func (m *mockNotificationRepo) FindRecentAggregatable(ctx context.Context, userID, targetID string, windowStart time.Time) (model.Notification, bool, error) {
	if m.FindRecentAggregatableFn == nil {
		return model.Notification{}, false, nil
	}
	return m.FindRecentAggregatableFn(ctx, userID, targetID, windowStart)
}

func (m *mockNotificationRepo) Aggregate(ctx context.Context, id string) (int, error) {
	return m.AggregateFunc(ctx, id)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]model.Notification, int, error) {
	return m.ListFunc(ctx, userID, page, limit, unreadOnly)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, userID, id string) (model.Notification, error) {
	return m.GetByIDFunc(ctx, userID, id)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	return m.MarkReadFunc(ctx, userID, id)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, userID, id string) error {
	return m.DeleteFunc(ctx, userID, id)
}

func (m *mockNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.DeleteOlderThanFunc(ctx, cutoff)
}

type mockPreferenceRepo struct {
	GetFunc          func(ctx context.Context, userID string) (model.NotificationPreference, bool, error)
	UpsertFunc       func(ctx context.Context, pref model.NotificationPreference) error
	SetPushTokenFunc func(ctx context.Context, userID, platform, token string) error
}

func (m *mockPreferenceRepo) Get(ctx context.Context, userID string) (model.NotificationPreference, bool, error) {
	if m.GetFunc == nil {
		return model.NotificationPreference{}, false, nil
	}
	return m.GetFunc(ctx, userID)
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, pref model.NotificationPreference) error {
	return m.UpsertFunc(ctx, pref)
}

func (m *mockPreferenceRepo) SetPushToken(ctx context.Context, userID, platform, token string) error {
	return m.SetPushTokenFunc(ctx, userID, platform, token)
}

type mockPush struct {
	SendFunc func(ctx context.Context, pref model.NotificationPreference, title, body string, data map[string]string) error
	sent     []string
}

func (m *mockPush) Send(ctx context.Context, pref model.NotificationPreference, title, body string, data map[string]string) error {
	m.sent = append(m.sent, title)
	if m.SendFunc == nil {
		return nil
	}
	return m.SendFunc(ctx, pref, title, body, data)
}

type mockPostMetadataRepo struct {
	GetByIDFunc            func(ctx context.Context, postID string) (model.PostMetadata, error)
	ListByAuthorsFunc      func(ctx context.Context, authorIDs []string, limit int) ([]model.PostMetadata, error)
	ListByAuthorsAfterFunc func(ctx context.Context, authorIDs []string, cursor string, limit int) ([]model.PostMetadata, error)
	ListTrendingFunc       func(ctx context.Context, since time.Time, limit int) ([]model.PostMetadata, error)
}

func (m *mockPostMetadataRepo) GetByID(ctx context.Context, postID string) (model.PostMetadata, error) {
	return m.GetByIDFunc(ctx, postID)
}

func (m *mockPostMetadataRepo) ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]model.PostMetadata, error) {
	return m.ListByAuthorsFunc(ctx, authorIDs, limit)
}

func (m *mockPostMetadataRepo) ListByAuthorsAfter(ctx context.Context, authorIDs []string, cursor string, limit int) ([]model.PostMetadata, error) {
	return m.ListByAuthorsAfterFunc(ctx, authorIDs, cursor, limit)
}

func (m *mockPostMetadataRepo) ListTrending(ctx context.Context, since time.Time, limit int) ([]model.PostMetadata, error) {
	return m.ListTrendingFunc(ctx, since, limit)
}

type mockFollowRepo struct {
	GetFollowingIDsFunc func(ctx context.Context, userID string) ([]string, error)
	GetFollowerIDsFunc  func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockFollowRepo) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return m.GetFollowingIDsFunc(ctx, userID)
}

func (m *mockFollowRepo) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return m.GetFollowerIDsFunc(ctx, userID)
}

// mockFeedCache is an in-memory FeedCache.
type mockFeedCache struct {
	feeds  map[string][]model.Post
	scores map[string]float64
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{
		feeds:  make(map[string][]model.Post),
		scores: make(map[string]float64),
	}
}

func (m *mockFeedCache) GetFeed(ctx context.Context, key string) ([]model.Post, bool, error) {
	posts, ok := m.feeds[key]
	return posts, ok, nil
}

func (m *mockFeedCache) SetFeed(ctx context.Context, key string, posts []model.Post, ttl time.Duration) error {
	m.feeds[key] = posts
	return nil
}

func (m *mockFeedCache) DeleteFeed(ctx context.Context, key string) (bool, error) {
	_, ok := m.feeds[key]
	delete(m.feeds, key)
	return ok, nil
}

func (m *mockFeedCache) GetScore(ctx context.Context, postID string) (float64, bool, error) {
	score, ok := m.scores[postID]
	return score, ok, nil
}

func (m *mockFeedCache) SetScore(ctx context.Context, postID string, score float64, ttl time.Duration) error {
	m.scores[postID] = score
	return nil
}

func (m *mockFeedCache) DeleteScore(ctx context.Context, postID string) error {
	delete(m.scores, postID)
	return nil
}

// mockSearchStore implements search.Indexer and search.Querier in memory.
type mockSearchStore struct {
	posts    map[string]model.PostDocument
	users    map[string]model.UserDocument
	hashtags map[string]model.HashtagDocument

	SearchFunc func(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, int, error)
}

func newMockSearchStore() *mockSearchStore {
	return &mockSearchStore{
		posts:    make(map[string]model.PostDocument),
		users:    make(map[string]model.UserDocument),
		hashtags: make(map[string]model.HashtagDocument),
	}
}

func (m *mockSearchStore) IndexPost(ctx context.Context, doc model.PostDocument) error {
	m.posts[doc.ID] = doc
	return nil
}

func (m *mockSearchStore) IndexUser(ctx context.Context, doc model.UserDocument) error {
	m.users[doc.ID] = doc
	return nil
}

func (m *mockSearchStore) GetHashtag(ctx context.Context, tag string) (model.HashtagDocument, bool, error) {
	doc, ok := m.hashtags[tag]
	return doc, ok, nil
}

func (m *mockSearchStore) IndexHashtag(ctx context.Context, doc model.HashtagDocument) error {
	m.hashtags[doc.Tag] = doc
	return nil
}

func (m *mockSearchStore) Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, int, error) {
	return m.SearchFunc(ctx, index, body)
}
