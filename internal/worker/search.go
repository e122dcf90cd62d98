package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/service"
)

const maxIndexAttempts = 3

// SearchDispatcher feeds the search indices from the content and user
// streams. Indexing is retried with exponential backoff before giving up on
// an event.
type SearchDispatcher struct {
	indexing  service.IndexingService
	retryBase time.Duration
}

func NewSearchDispatcher(indexing service.IndexingService) *SearchDispatcher {
	return &SearchDispatcher{indexing: indexing, retryBase: time.Second}
}

// withRetry runs fn up to maxIndexAttempts times, sleeping base*2^attempt
// between tries. The attempt counter starts fresh for every event.
func (d *SearchDispatcher) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxIndexAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxIndexAttempts-1 {
			break
		}
		backoff := d.retryBase * (1 << attempt)
		logrus.Warnf("[Worker] %s FAILED (attempt %d/%d): err=%v retry_in=%v",
			op, attempt+1, maxIndexAttempts, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, maxIndexAttempts, err)
}

// HandleContentEvent indexes new posts.
func (d *SearchDispatcher) HandleContentEvent(ctx context.Context, e event.Envelope) error {
	if e.Type() != event.TypePostCreated {
		return nil
	}

	postID := e.PostID()
	if postID == "" {
		logrus.Warnf("[Worker] post.created missing post id, skipping index")
		return nil
	}

	doc := model.PostDocument{
		ID:      postID,
		UserID:  e.UserID(),
		Content: e.Content(),
	}
	return d.withRetry(ctx, "index post", func() error {
		return d.indexing.IndexPost(ctx, doc)
	})
}

// HandleUserEvent indexes new users. The profile fields arrive nested under
// "data".
func (d *SearchDispatcher) HandleUserEvent(ctx context.Context, e event.Envelope) error {
	if e.Type() != event.TypeUserCreated {
		return nil
	}

	data := e.Data()
	if data == nil {
		logrus.Warnf("[Worker] user.created missing data payload")
		return nil
	}

	doc := model.UserDocument{
		ID:                stringField(data, "id"),
		Email:             stringField(data, "email"),
		Name:              stringField(data, "name"),
		Bio:               stringField(data, "bio"),
		ProfilePictureURL: stringField(data, "profile_picture_url"),
	}
	if doc.ID == "" {
		logrus.Warnf("[Worker] user.created missing user id, skipping index")
		return nil
	}
	return d.withRetry(ctx, "index user", func() error {
		return d.indexing.IndexUser(ctx, doc)
	})
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
