package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FCMClient wraps the Firebase Cloud Messaging SDK.
type FCMClient struct {
	client *messaging.Client
}

// NewFCMClient initializes Firebase from a service account credentials file.
func NewFCMClient(ctx context.Context, credentialsPath string) (*FCMClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize fcm client: %w", err)
	}

	logrus.Info("[FCM] Client initialized")
	return &FCMClient{client: client}, nil
}

// SendToToken delivers one push message to a device token.
func (c *FCMClient) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	id, err := c.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send fcm message: %w", err)
	}

	logrus.Debugf("[FCM] Send OK: message=%s", id)
	return nil
}
