package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/config"
	"github.com/redesocial/engine/internal/database"
	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/queue"
	"github.com/redesocial/engine/internal/repository"
	"github.com/redesocial/engine/internal/service"
	transport "github.com/redesocial/engine/internal/transport/http"
	"github.com/redesocial/engine/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	notificationRepo := repository.NewNotificationRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	var fcm service.FCMSender
	if cfg.FCMCredentialsFile != "" {
		client, err := service.NewFCMClient(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			logrus.Warnf("FCM disabled: %v", err)
		} else {
			fcm = client
		}
	}
	var apns service.APNSSender
	if cfg.APNSKeyFile != "" {
		apns = service.NewMockAPNSClient()
	}
	push := service.NewPushService(fcm, apns)

	notifications := service.NewNotificationService(
		notificationRepo, preferenceRepo, push,
		cfg.CommentAggregationWindow, cfg.RetentionDays,
	)

	dispatcher := worker.NewNotificationDispatcher(notifications)
	manager := worker.NewManager()
	manager.AddConsumer(queue.NewConsumer(cfg.KafkaBrokers, cfg.NotificationGroup, event.TopicContent, dispatcher.HandleContentEvent))
	manager.AddConsumer(queue.NewConsumer(cfg.KafkaBrokers, cfg.NotificationGroup, event.TopicSocial, dispatcher.HandleSocialEvent))
	manager.WithSweep(notifications.CleanupOld, cfg.RetentionSweepInterval)
	manager.Start()

	health := handler.NewHealthHandler("notification-service", map[string]handler.BackendCheck{
		"database":  db.PingContext,
		"consumers": manager.Health,
	})
	router := transport.NewNotificationRouter(handler.NewNotificationHandler(notifications), health, cfg.JWTSecret)
	server := transport.NewServer(cfg.NotificationPort, router)

	go func() {
		if err := server.Start(); err != nil {
			logrus.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %v", err)
	}
	manager.Stop()
}
