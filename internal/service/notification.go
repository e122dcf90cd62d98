package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/repository"
)

// NotificationService owns notification creation, aggregation, preferences
// and the read/delete lifecycle.
type NotificationService interface {
	// NotifyLike records a like notification. Returns false when the
	// recipient disabled like notifications or liked their own post.
	NotifyLike(ctx context.Context, recipientID, actorID, postID string) (bool, error)

	// NotifyComment records a comment notification, folding it into an
	// aggregated one when another comment on the same post arrived inside
	// the aggregation window.
	NotifyComment(ctx context.Context, recipientID, actorID, postID, commentID, content string) (bool, error)

	// NotifyFollow records a new-follower notification.
	NotifyFollow(ctx context.Context, recipientID, actorID string) (bool, error)

	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (model.NotificationListResponse, error)

	// Get returns one notification and marks it read.
	Get(ctx context.Context, userID, id string) (model.Notification, error)

	MarkRead(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error

	GetPreferences(ctx context.Context, userID string) (model.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID string, update model.PreferenceUpdate) (model.NotificationPreference, error)
	SetPushToken(ctx context.Context, userID, platform, token string) error

	// CleanupOld removes notifications past the retention horizon.
	CleanupOld(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo              repository.NotificationRepository
	prefRepo          repository.PreferenceRepository
	push              PushService
	aggregationWindow time.Duration
	retentionDays     int
	excerptLen        int
}

// NewNotificationService wires the notification workflow together.
func NewNotificationService(
	repo repository.NotificationRepository,
	prefRepo repository.PreferenceRepository,
	push PushService,
	aggregationWindow time.Duration,
	retentionDays int,
) NotificationService {
	return &notificationService{
		repo:              repo,
		prefRepo:          prefRepo,
		push:              push,
		aggregationWindow: aggregationWindow,
		retentionDays:     retentionDays,
		excerptLen:        100,
	}
}

// preferences returns the stored row or the all-enabled defaults when the
// user never saved preferences.
func (s *notificationService) preferences(ctx context.Context, userID string) (model.NotificationPreference, error) {
	pref, found, err := s.prefRepo.Get(ctx, userID)
	if err != nil {
		return model.NotificationPreference{}, err
	}
	if !found {
		return model.DefaultPreference(userID), nil
	}
	return pref, nil
}

func (s *notificationService) allowed(pref model.NotificationPreference, kind string) bool {
	switch kind {
	case model.NotificationKindLike:
		return pref.LikesEnabled
	case model.NotificationKindComment, model.NotificationKindCommentAggregated:
		return pref.CommentsEnabled
	case model.NotificationKindFollow:
		return pref.FollowsEnabled
	default:
		return true
	}
}

func (s *notificationService) NotifyLike(ctx context.Context, recipientID, actorID, postID string) (bool, error) {
	if recipientID == actorID {
		return false, nil
	}

	pref, err := s.preferences(ctx, recipientID)
	if err != nil {
		return false, err
	}
	if !s.allowed(pref, model.NotificationKindLike) {
		logrus.Debugf("[Notification] Like suppressed by preferences: user=%s", recipientID)
		return false, nil
	}

	id, err := s.repo.Create(ctx, model.NotificationCreate{
		UserID:   recipientID,
		Kind:     model.NotificationKindLike,
		Title:    model.LikeTitle,
		Body:     model.LikeBody,
		ActorID:  actorID,
		TargetID: &postID,
		Metadata: model.Metadata{"post_id": postID},
	})
	if err != nil {
		return false, fmt.Errorf("create like notification: %w", err)
	}

	logrus.Infof("[Notification] Like created: id=%s user=%s post=%s", id, recipientID, postID)
	s.sendPush(ctx, pref, model.LikeTitle, model.LikeBody, map[string]string{"post_id": postID})
	return true, nil
}

func (s *notificationService) NotifyComment(ctx context.Context, recipientID, actorID, postID, commentID, content string) (bool, error) {
	if recipientID == actorID {
		return false, nil
	}

	pref, err := s.preferences(ctx, recipientID)
	if err != nil {
		return false, err
	}
	if !s.allowed(pref, model.NotificationKindComment) {
		logrus.Debugf("[Notification] Comment suppressed by preferences: user=%s", recipientID)
		return false, nil
	}

	windowStart := time.Now().Add(-s.aggregationWindow)
	existing, found, err := s.repo.FindRecentAggregatable(ctx, recipientID, postID, windowStart)
	if err != nil {
		return false, err
	}

	if found {
		newCount, err := s.repo.Aggregate(ctx, existing.ID)
		if err != nil {
			return false, fmt.Errorf("aggregate comment notification: %w", err)
		}
		title := model.AggregatedCommentTitle(newCount)
		body := model.AggregatedCommentBody(newCount)
		logrus.Infof("[Notification] Comment aggregated: id=%s user=%s post=%s count=%d",
			existing.ID, recipientID, postID, newCount)
		s.sendPush(ctx, pref, title, body, map[string]string{"post_id": postID})
		return true, nil
	}

	body := model.CommentExcerpt(content, s.excerptLen)
	if body == "" {
		body = model.CommentFallbackBody
	}
	id, err := s.repo.Create(ctx, model.NotificationCreate{
		UserID:   recipientID,
		Kind:     model.NotificationKindComment,
		Title:    model.CommentTitle,
		Body:     body,
		ActorID:  actorID,
		TargetID: &postID,
		Metadata: model.Metadata{"post_id": postID, "comment_id": commentID},
	})
	if err != nil {
		return false, fmt.Errorf("create comment notification: %w", err)
	}

	logrus.Infof("[Notification] Comment created: id=%s user=%s post=%s", id, recipientID, postID)
	s.sendPush(ctx, pref, model.CommentTitle, body, map[string]string{"post_id": postID, "comment_id": commentID})
	return true, nil
}

func (s *notificationService) NotifyFollow(ctx context.Context, recipientID, actorID string) (bool, error) {
	if recipientID == actorID {
		return false, nil
	}

	pref, err := s.preferences(ctx, recipientID)
	if err != nil {
		return false, err
	}
	if !s.allowed(pref, model.NotificationKindFollow) {
		logrus.Debugf("[Notification] Follow suppressed by preferences: user=%s", recipientID)
		return false, nil
	}

	id, err := s.repo.Create(ctx, model.NotificationCreate{
		UserID:   recipientID,
		Kind:     model.NotificationKindFollow,
		Title:    model.FollowTitle,
		Body:     model.FollowBody,
		ActorID:  actorID,
		Metadata: model.Metadata{"follower_id": actorID},
	})
	if err != nil {
		return false, fmt.Errorf("create follow notification: %w", err)
	}

	logrus.Infof("[Notification] Follow created: id=%s user=%s follower=%s", id, recipientID, actorID)
	s.sendPush(ctx, pref, model.FollowTitle, model.FollowBody, map[string]string{"follower_id": actorID})
	return true, nil
}

// sendPush delivers best-effort. Vendor failures never fail the caller.
func (s *notificationService) sendPush(ctx context.Context, pref model.NotificationPreference, title, body string, data map[string]string) {
	if s.push == nil {
		return
	}
	if err := s.push.Send(ctx, pref, title, body, data); err != nil {
		logrus.Warnf("[Notification] Push delivery FAILED: user=%s err=%v", pref.UserID, err)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (model.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := s.repo.List(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		return model.NotificationListResponse{}, err
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return model.NotificationListResponse{
		Notifications: notifications,
		Pagination: model.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *notificationService) Get(ctx context.Context, userID, id string) (model.Notification, error) {
	n, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return model.Notification{}, err
	}

	if !n.IsRead {
		if err := s.repo.MarkRead(ctx, userID, id); err != nil {
			return model.Notification{}, err
		}
		n.IsRead = true
		now := time.Now()
		n.ReadAt = &now
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *notificationService) GetPreferences(ctx context.Context, userID string) (model.NotificationPreference, error) {
	return s.preferences(ctx, userID)
}

// UpdatePreferences applies a partial update: nil fields keep their current
// value, starting from the defaults when no row exists yet.
func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, update model.PreferenceUpdate) (model.NotificationPreference, error) {
	pref, err := s.preferences(ctx, userID)
	if err != nil {
		return model.NotificationPreference{}, err
	}

	if update.LikesEnabled != nil {
		pref.LikesEnabled = *update.LikesEnabled
	}
	if update.CommentsEnabled != nil {
		pref.CommentsEnabled = *update.CommentsEnabled
	}
	if update.FollowsEnabled != nil {
		pref.FollowsEnabled = *update.FollowsEnabled
	}
	if update.PushEnabled != nil {
		pref.PushEnabled = *update.PushEnabled
	}

	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return model.NotificationPreference{}, err
	}
	logrus.Infof("[Notification] Preferences updated: user=%s", userID)
	return pref, nil
}

func (s *notificationService) SetPushToken(ctx context.Context, userID, platform, token string) error {
	if platform != "android" && platform != "ios" {
		return fmt.Errorf("unsupported platform %q", platform)
	}
	if err := s.prefRepo.SetPushToken(ctx, userID, platform, token); err != nil {
		return err
	}
	logrus.Infof("[Notification] Push token registered: user=%s platform=%s", userID, platform)
	return nil
}

func (s *notificationService) CleanupOld(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logrus.Infof("[Notification] Retention sweep OK: removed=%d cutoff=%s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}
