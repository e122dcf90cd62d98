package worker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/service"
)

// NotificationDispatcher turns bus events into notifications.
type NotificationDispatcher struct {
	notifications service.NotificationService
}

func NewNotificationDispatcher(notifications service.NotificationService) *NotificationDispatcher {
	return &NotificationDispatcher{notifications: notifications}
}

// HandleContentEvent handles like.created and comment.created. Events with
// missing identifiers are skipped, not retried.
func (d *NotificationDispatcher) HandleContentEvent(ctx context.Context, e event.Envelope) error {
	switch e.Type() {
	case event.TypeLikeCreated:
		recipient, actor, postID := e.PostAuthorID(), e.UserID(), e.PostID()
		if recipient == "" || actor == "" || postID == "" {
			logrus.Warnf("[Worker] like.created missing fields: author=%q user=%q post=%q", recipient, actor, postID)
			return nil
		}
		_, err := d.notifications.NotifyLike(ctx, recipient, actor, postID)
		return err

	case event.TypeCommentCreated:
		recipient, actor, postID := e.PostAuthorID(), e.UserID(), e.PostID()
		if recipient == "" || actor == "" || postID == "" {
			logrus.Warnf("[Worker] comment.created missing fields: author=%q user=%q post=%q", recipient, actor, postID)
			return nil
		}
		_, err := d.notifications.NotifyComment(ctx, recipient, actor, postID, e.CommentID(), e.Content())
		return err

	default:
		return nil
	}
}

// HandleSocialEvent handles follow.created.
func (d *NotificationDispatcher) HandleSocialEvent(ctx context.Context, e event.Envelope) error {
	if e.Type() != event.TypeFollowCreated {
		return nil
	}

	follower, following := e.FollowerID(), e.FollowingID()
	if follower == "" || following == "" {
		logrus.Warnf("[Worker] follow.created missing fields: follower=%q following=%q", follower, following)
		return nil
	}
	_, err := d.notifications.NotifyFollow(ctx, following, follower)
	return err
}
