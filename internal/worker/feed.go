package worker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/service"
)

// FeedDispatcher keeps the feed caches consistent with the content stream.
type FeedDispatcher struct {
	invalidation service.InvalidationService
}

func NewFeedDispatcher(invalidation service.InvalidationService) *FeedDispatcher {
	return &FeedDispatcher{invalidation: invalidation}
}

// HandleContentEvent invalidates follower feeds on new posts and score plus
// trending entries on engagement changes.
func (d *FeedDispatcher) HandleContentEvent(ctx context.Context, e event.Envelope) error {
	switch e.Type() {
	case event.TypePostCreated:
		authorID := e.UserID()
		if authorID == "" {
			logrus.Warnf("[Worker] post.created missing user id")
			return nil
		}
		_, err := d.invalidation.InvalidateFollowerFeeds(ctx, authorID)
		return err

	case event.TypeLikeCreated, event.TypeCommentCreated, event.TypeShareCreated:
		postID := e.PostID()
		if postID == "" {
			logrus.Warnf("[Worker] %s missing post id", e.Type())
			return nil
		}
		return d.invalidation.InvalidateInteraction(ctx, postID)

	default:
		return nil
	}
}
