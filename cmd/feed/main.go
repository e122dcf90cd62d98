package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/cache"
	"github.com/redesocial/engine/internal/config"
	"github.com/redesocial/engine/internal/database"
	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/queue"
	"github.com/redesocial/engine/internal/redis"
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

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("connect redis: %v", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()); err != nil {
		logrus.Fatalf("ping redis: %v", err)
	}

	feedCache := cache.NewFeedCache(redisClient.Client)
	postRepo := repository.NewPostMetadataRepository(db)
	followRepo := repository.NewFollowRepository(db)

	scores := service.NewScoreService(postRepo, feedCache, service.ScoreWeights{
		Likes:      cfg.WeightLikes,
		Comments:   cfg.WeightComments,
		Shares:     cfg.WeightShares,
		DecayHours: cfg.TimeDecayHours,
	}, cfg.ScoreCacheTTL)
	feeds := service.NewFeedService(
		postRepo, followRepo, scores, feedCache,
		cfg.FeedCacheTTL, cfg.PostsPerPage, cfg.MaxFeedSize, cfg.TrendingWindowDays,
	)
	invalidation := service.NewInvalidationService(followRepo, feedCache)

	dispatcher := worker.NewFeedDispatcher(invalidation)
	manager := worker.NewManager()
	manager.AddConsumer(queue.NewConsumer(cfg.KafkaBrokers, cfg.FeedGroup, event.TopicContent, dispatcher.HandleContentEvent))
	manager.Start()

	health := handler.NewHealthHandler("recommendation-engine", map[string]handler.BackendCheck{
		"database":  db.PingContext,
		"redis":     redisClient.Ping,
		"consumers": manager.Health,
	})
	router := transport.NewFeedRouter(handler.NewFeedHandler(feeds, scores, invalidation), health)
	server := transport.NewServer(cfg.FeedPort, router)

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
