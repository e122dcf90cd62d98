package service

import (
	"context"
	"testing"
	"time"

	"github.com/redesocial/engine/internal/model"
)

func boolPtr(b bool) *bool { return &b }

// =====================================================================
// NotifyLike
// =====================================================================

func TestNotifyLike_CreatesAndPushes(t *testing.T) {
	// ARRANGE
	var created model.NotificationCreate
	repo := &mockNotificationRepo{
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			created = n
			return "notif-1", nil
		},
	}
	push := &mockPush{}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, push, 5*time.Minute, 90)

	// ACT
	ok, err := svc.NotifyLike(context.Background(), "author-1", "liker-1", "post-1")

	// ASSERT
	if err != nil {
		t.Fatalf("NotifyLike returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected notification to be created")
	}
	if created.Kind != model.NotificationKindLike {
		t.Errorf("expected kind like, got %s", created.Kind)
	}
	if created.Title != "Nova curtida" || created.Body != "Alguém curtiu seu post" {
		t.Errorf("unexpected templates: %q / %q", created.Title, created.Body)
	}
	if len(push.sent) != 1 {
		t.Errorf("expected 1 push, got %d", len(push.sent))
	}
}

func TestNotifyLike_SelfLikeIsSkipped(t *testing.T) {
	// ARRANGE
	repo := &mockNotificationRepo{
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			t.Fatal("Create must not be called for a self-like")
			return "", nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	ok, err := svc.NotifyLike(context.Background(), "user-1", "user-1", "post-1")

	// ASSERT
	if err != nil {
		t.Fatalf("NotifyLike returned error: %v", err)
	}
	if ok {
		t.Error("expected self-like to be skipped")
	}
}

func TestNotifyLike_SuppressedByPreferences(t *testing.T) {
	// ARRANGE
	prefRepo := &mockPreferenceRepo{
		GetFunc: func(ctx context.Context, userID string) (model.NotificationPreference, bool, error) {
			pref := model.DefaultPreference(userID)
			pref.LikesEnabled = false
			return pref, true, nil
		},
	}
	repo := &mockNotificationRepo{
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			t.Fatal("Create must not be called when likes are disabled")
			return "", nil
		},
	}
	svc := NewNotificationService(repo, prefRepo, nil, 5*time.Minute, 90)

	// ACT
	ok, err := svc.NotifyLike(context.Background(), "author-1", "liker-1", "post-1")

	// ASSERT
	if err != nil {
		t.Fatalf("NotifyLike returned error: %v", err)
	}
	if ok {
		t.Error("expected notification to be suppressed")
	}
}

// =====================================================================
// NotifyComment aggregation
// =====================================================================

func TestNotifyComment_FirstCommentCreatesPlainNotification(t *testing.T) {
	// ARRANGE
	var created model.NotificationCreate
	repo := &mockNotificationRepo{
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			created = n
			return "notif-1", nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	ok, err := svc.NotifyComment(context.Background(), "author-1", "commenter-1", "post-1", "comment-1", "muito bom!")

	// ASSERT
	if err != nil {
		t.Fatalf("NotifyComment returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected notification to be created")
	}
	if created.Kind != model.NotificationKindComment {
		t.Errorf("expected kind comment, got %s", created.Kind)
	}
	if created.Body != "muito bom!" {
		t.Errorf("expected comment excerpt as body, got %q", created.Body)
	}
}

func TestNotifyComment_SecondCommentInsideWindowAggregates(t *testing.T) {
	// ARRANGE
	aggregatedID := ""
	repo := &mockNotificationRepo{
		FindRecentAggregatableFn: func(ctx context.Context, userID, targetID string, windowStart time.Time) (model.Notification, bool, error) {
			return model.Notification{ID: "notif-1", AggregatedCount: 1}, true, nil
		},
		AggregateFunc: func(ctx context.Context, id string) (int, error) {
			aggregatedID = id
			return 2, nil
		},
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			t.Fatal("Create must not be called when an aggregatable row exists")
			return "", nil
		},
	}
	push := &mockPush{}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, push, 5*time.Minute, 90)

	// ACT
	ok, err := svc.NotifyComment(context.Background(), "author-1", "commenter-2", "post-1", "comment-2", "eu também")

	// ASSERT
	if err != nil {
		t.Fatalf("NotifyComment returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected aggregation to count as handled")
	}
	if aggregatedID != "notif-1" {
		t.Errorf("expected aggregation of notif-1, got %q", aggregatedID)
	}
	if len(push.sent) != 1 || push.sent[0] != "2 novos comentários" {
		t.Errorf("expected aggregated push title, got %v", push.sent)
	}
}

func TestNotifyComment_EmptyContentUsesFallbackBody(t *testing.T) {
	// ARRANGE
	var created model.NotificationCreate
	repo := &mockNotificationRepo{
		CreateFunc: func(ctx context.Context, n model.NotificationCreate) (string, error) {
			created = n
			return "notif-1", nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	if _, err := svc.NotifyComment(context.Background(), "author-1", "commenter-1", "post-1", "comment-1", ""); err != nil {
		t.Fatalf("NotifyComment returned error: %v", err)
	}

	// ASSERT
	if created.Body != "Alguém comentou no seu post" {
		t.Errorf("expected fallback body, got %q", created.Body)
	}
}

// =====================================================================
// Read lifecycle
// =====================================================================

func TestGet_MarksUnreadNotificationRead(t *testing.T) {
	// ARRANGE
	marked := false
	repo := &mockNotificationRepo{
		GetByIDFunc: func(ctx context.Context, userID, id string) (model.Notification, error) {
			return model.Notification{ID: id, UserID: userID, IsRead: false}, nil
		},
		MarkReadFunc: func(ctx context.Context, userID, id string) error {
			marked = true
			return nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	n, err := svc.Get(context.Background(), "user-1", "notif-1")

	// ASSERT
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !marked {
		t.Error("expected Get to mark the notification read")
	}
	if !n.IsRead || n.ReadAt == nil {
		t.Error("expected returned notification to carry read state")
	}
}

func TestGet_AlreadyReadSkipsMark(t *testing.T) {
	// ARRANGE
	repo := &mockNotificationRepo{
		GetByIDFunc: func(ctx context.Context, userID, id string) (model.Notification, error) {
			return model.Notification{ID: id, IsRead: true}, nil
		},
		MarkReadFunc: func(ctx context.Context, userID, id string) error {
			t.Fatal("MarkRead must not be called for an already-read notification")
			return nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT / ASSERT
	if _, err := svc.Get(context.Background(), "user-1", "notif-1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
}

// =====================================================================
// Preferences
// =====================================================================

func TestGetPreferences_MissingRowYieldsDefaults(t *testing.T) {
	// ARRANGE
	svc := NewNotificationService(&mockNotificationRepo{}, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	pref, err := svc.GetPreferences(context.Background(), "user-1")

	// ASSERT
	if err != nil {
		t.Fatalf("GetPreferences returned error: %v", err)
	}
	if !pref.LikesEnabled || !pref.CommentsEnabled || !pref.FollowsEnabled || !pref.PushEnabled {
		t.Errorf("expected all-enabled defaults, got %+v", pref)
	}
}

func TestUpdatePreferences_PartialUpdateKeepsOtherFields(t *testing.T) {
	// ARRANGE
	var saved model.NotificationPreference
	prefRepo := &mockPreferenceRepo{
		GetFunc: func(ctx context.Context, userID string) (model.NotificationPreference, bool, error) {
			pref := model.DefaultPreference(userID)
			pref.FollowsEnabled = false
			return pref, true, nil
		},
		UpsertFunc: func(ctx context.Context, pref model.NotificationPreference) error {
			saved = pref
			return nil
		},
	}
	svc := NewNotificationService(&mockNotificationRepo{}, prefRepo, nil, 5*time.Minute, 90)

	// ACT
	pref, err := svc.UpdatePreferences(context.Background(), "user-1", model.PreferenceUpdate{
		LikesEnabled: boolPtr(false),
	})

	// ASSERT
	if err != nil {
		t.Fatalf("UpdatePreferences returned error: %v", err)
	}
	if pref.LikesEnabled {
		t.Error("expected likes to be disabled")
	}
	if pref.FollowsEnabled {
		t.Error("expected stored follows_enabled=false to survive the partial update")
	}
	if saved.UserID != "user-1" {
		t.Errorf("expected upsert for user-1, got %q", saved.UserID)
	}
}

func TestSetPushToken_RejectsUnknownPlatform(t *testing.T) {
	// ARRANGE
	svc := NewNotificationService(&mockNotificationRepo{}, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	err := svc.SetPushToken(context.Background(), "user-1", "windows", "tok")

	// ASSERT
	if err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

// =====================================================================
// Retention
// =====================================================================

func TestCleanupOld_UsesRetentionCutoff(t *testing.T) {
	// ARRANGE
	var gotCutoff time.Time
	repo := &mockNotificationRepo{
		DeleteOlderThanFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 7, nil
		},
	}
	svc := NewNotificationService(repo, &mockPreferenceRepo{}, nil, 5*time.Minute, 90)

	// ACT
	removed, err := svc.CleanupOld(context.Background())

	// ASSERT
	if err != nil {
		t.Fatalf("CleanupOld returned error: %v", err)
	}
	if removed != 7 {
		t.Errorf("expected 7 removed, got %d", removed)
	}
	want := time.Now().AddDate(0, 0, -90)
	if diff := gotCutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff %v not near expected %v", gotCutoff, want)
	}
}
