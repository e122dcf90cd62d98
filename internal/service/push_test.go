package service

import (
	"context"
	"errors"
	"testing"

	"github.com/redesocial/engine/internal/model"
)

type mockSender struct {
	tokens []string
	err    error
}

func (m *mockSender) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	m.tokens = append(m.tokens, token)
	return m.err
}

func strPtr(s string) *string { return &s }

func TestPushSend_DisabledSkipsDelivery(t *testing.T) {
	// ARRANGE
	fcm := &mockSender{}
	svc := NewPushService(fcm, nil)
	pref := model.DefaultPreference("user-1")
	pref.PushEnabled = false
	pref.FCMToken = strPtr("tok")

	// ACT
	err := svc.Send(context.Background(), pref, "t", "b", nil)

	// ASSERT
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(fcm.tokens) != 0 {
		t.Error("expected no delivery when push is disabled")
	}
}

func TestPushSend_PrefersFCMOverAPNS(t *testing.T) {
	// ARRANGE
	fcm := &mockSender{}
	apns := &mockSender{}
	svc := NewPushService(fcm, apns)
	pref := model.DefaultPreference("user-1")
	pref.FCMToken = strPtr("fcm-tok")
	pref.APNSToken = strPtr("apns-tok")

	// ACT
	err := svc.Send(context.Background(), pref, "t", "b", nil)

	// ASSERT
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(fcm.tokens) != 1 || fcm.tokens[0] != "fcm-tok" {
		t.Errorf("expected FCM delivery, got %v", fcm.tokens)
	}
	if len(apns.tokens) != 0 {
		t.Error("APNs must not be used when an FCM token exists")
	}
}

func TestPushSend_FallsBackToAPNS(t *testing.T) {
	// ARRANGE
	apns := &mockSender{}
	svc := NewPushService(nil, apns)
	pref := model.DefaultPreference("user-1")
	pref.APNSToken = strPtr("apns-tok")

	// ACT
	err := svc.Send(context.Background(), pref, "t", "b", nil)

	// ASSERT
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(apns.tokens) != 1 || apns.tokens[0] != "apns-tok" {
		t.Errorf("expected APNs delivery, got %v", apns.tokens)
	}
}

func TestPushSend_NoTokensIsAccepted(t *testing.T) {
	// ARRANGE
	svc := NewPushService(&mockSender{}, &mockSender{})
	pref := model.DefaultPreference("user-1")

	// ACT
	err := svc.Send(context.Background(), pref, "t", "b", nil)

	// ASSERT
	if err != nil {
		t.Errorf("a recipient without tokens must not be an error, got %v", err)
	}
}

func TestPushSend_VendorErrorSurfaces(t *testing.T) {
	// ARRANGE
	fcm := &mockSender{err: errors.New("unregistered token")}
	svc := NewPushService(fcm, nil)
	pref := model.DefaultPreference("user-1")
	pref.FCMToken = strPtr("tok")

	// ACT
	err := svc.Send(context.Background(), pref, "t", "b", nil)

	// ASSERT
	if err == nil {
		t.Error("expected the vendor error to surface to the caller")
	}
}
