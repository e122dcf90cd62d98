package http

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/transport/http/middleware"
)

func baseRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	return r
}

// NewNotificationRouter mounts the notification API. Everything except the
// health check requires a bearer token.
func NewNotificationRouter(
	notifications *handler.NotificationHandler,
	health *handler.HealthHandler,
	jwtSecret string,
) *chi.Mux {
	r := baseRouter()

	r.Get("/health", health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifications.List)
			r.Get("/{id}", notifications.Get)
			r.Patch("/{id}/read", notifications.MarkRead)
			r.Delete("/{id}", notifications.Delete)
		})

		r.Get("/preferences", notifications.GetPreferences)
		r.Put("/preferences", notifications.UpdatePreferences)
		r.Post("/preferences/push-token", notifications.RegisterPushToken)
	})

	return r
}

// NewFeedRouter mounts the feed API. The feed routes are called
// service-to-service and carry no user auth.
func NewFeedRouter(feeds *handler.FeedHandler, health *handler.HealthHandler) *chi.Mux {
	r := baseRouter()

	r.Get("/health", health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/feed/{user_id}", feeds.GetFeed)
		r.Post("/score", feeds.Score)
		r.Get("/trending", feeds.Trending)
		r.Post("/invalidate-cache/{user_id}", feeds.InvalidateCache)
	})

	return r
}

// NewSearchRouter mounts the search API.
func NewSearchRouter(search *handler.SearchHandler, health *handler.HealthHandler) *chi.Mux {
	r := baseRouter()

	r.Get("/health", health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", search.Search)
	})

	return r
}
