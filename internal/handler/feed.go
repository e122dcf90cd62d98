package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/httputil"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/service"
)

// FeedHandler serves ranked feeds, trending and the scoring endpoint.
type FeedHandler struct {
	feeds        service.FeedService
	scores       service.ScoreService
	invalidation service.InvalidationService
}

func NewFeedHandler(feeds service.FeedService, scores service.ScoreService, invalidation service.InvalidationService) *FeedHandler {
	return &FeedHandler{feeds: feeds, scores: scores, invalidation: invalidation}
}

// GetFeed handles GET /feed/{user_id}?cursor=&limit=
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	cursor := r.URL.Query().Get("cursor")
	limit := queryInt(r, "limit", 20)

	resp, err := h.feeds.GetFeed(r.Context(), userID, cursor, limit)
	if err != nil {
		logrus.Errorf("[Handler] Get feed FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to build feed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Score handles POST /score
func (h *FeedHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req model.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.PostID == "" {
		httputil.WriteBadRequest(w, "post_id is required")
		return
	}

	score, err := h.scores.Score(r.Context(), req.PostID)
	if err != nil {
		logrus.Errorf("[Handler] Score FAILED: post=%s err=%v", req.PostID, err)
		httputil.WriteInternalError(w, "Failed to compute score")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.ScoreResponse{PostID: req.PostID, RelevanceScore: score})
}

// Trending handles GET /trending?limit=
func (h *FeedHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)

	posts, err := h.feeds.GetTrending(r.Context(), limit)
	if err != nil {
		logrus.Errorf("[Handler] Trending FAILED: err=%v", err)
		httputil.WriteInternalError(w, "Failed to build trending feed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// InvalidateCache handles POST /invalidate-cache/{user_id}
func (h *FeedHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	removed, err := h.invalidation.InvalidateUserFeed(r.Context(), userID)
	if err != nil {
		logrus.Errorf("[Handler] Invalidate cache FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to invalidate cache")
		return
	}

	message := "no cached feed for user " + userID
	if removed {
		message = "feed cache invalidated for user " + userID
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "message": message})
}
