package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/config"
	"github.com/redesocial/engine/internal/event"
	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/queue"
	"github.com/redesocial/engine/internal/search"
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

	es, err := search.NewClient(cfg.ElasticsearchURL)
	if err != nil {
		logrus.Fatalf("connect elasticsearch: %v", err)
	}
	if err := search.EnsureIndices(es); err != nil {
		logrus.Fatalf("ensure indices: %v", err)
	}

	store := search.NewStore(es)
	indexing := service.NewIndexingService(store)
	searching := service.NewSearchService(store)

	dispatcher := worker.NewSearchDispatcher(indexing)
	manager := worker.NewManager()
	manager.AddConsumer(queue.NewConsumer(cfg.KafkaBrokers, cfg.SearchGroup, event.TopicContent, dispatcher.HandleContentEvent))
	manager.AddConsumer(queue.NewConsumer(cfg.KafkaBrokers, cfg.SearchGroup, event.TopicUser, dispatcher.HandleUserEvent))
	manager.Start()

	health := handler.NewHealthHandler("search-service", map[string]handler.BackendCheck{
		"elasticsearch": func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("elasticsearch ping: %s", res.Status())
			}
			return nil
		},
		"consumers": manager.Health,
	})
	router := transport.NewSearchRouter(handler.NewSearchHandler(searching), health)
	server := transport.NewServer(cfg.SearchPort, router)

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
