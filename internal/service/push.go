package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
)

// FCMSender delivers pushes to Android device tokens.
type FCMSender interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
}

// APNSSender delivers pushes to iOS device tokens.
type APNSSender interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
}

// PushService routes a notification to the recipient's registered device.
type PushService interface {
	Send(ctx context.Context, pref model.NotificationPreference, title, body string, data map[string]string) error
}

type pushService struct {
	fcm  FCMSender
	apns APNSSender
}

// NewPushService builds a PushService. Either sender may be nil when the
// corresponding credentials are not configured.
func NewPushService(fcm FCMSender, apns APNSSender) PushService {
	return &pushService{fcm: fcm, apns: apns}
}

// Send picks the delivery channel from the stored tokens: FCM first, then
// APNs. A recipient with push disabled or no usable token is skipped, which
// is not an error.
func (s *pushService) Send(ctx context.Context, pref model.NotificationPreference, title, body string, data map[string]string) error {
	if !pref.PushEnabled {
		return nil
	}

	if pref.FCMToken != nil && *pref.FCMToken != "" && s.fcm != nil {
		return s.fcm.SendToToken(ctx, *pref.FCMToken, title, body, data)
	}
	if pref.APNSToken != nil && *pref.APNSToken != "" && s.apns != nil {
		return s.apns.SendToToken(ctx, *pref.APNSToken, title, body, data)
	}

	logrus.Debugf("[Push] No deliverable token: user=%s", pref.UserID)
	return nil
}

// MockAPNSClient logs deliveries instead of calling Apple. Used until real
// APNs credentials are provisioned.
type MockAPNSClient struct{}

func NewMockAPNSClient() *MockAPNSClient {
	return &MockAPNSClient{}
}

func (c *MockAPNSClient) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	logrus.Infof("[APNs] Mock send OK: token=%s title=%s", token, title)
	return nil
}
