package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/httputil"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/service"
	"github.com/redesocial/engine/internal/transport/http/middleware"
)

// NotificationHandler serves the notification listing and lifecycle routes.
type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /notifications?page=&limit=&unread_only=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	resp, err := h.notifications.List(r.Context(), userID, page, limit, unreadOnly)
	if err != nil {
		logrus.Errorf("[Handler] List notifications FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list notifications")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /notifications/{id}. Fetching a notification marks it read.
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	n, err := h.notifications.Get(r.Context(), userID, id)
	if errors.Is(err, model.ErrNotificationNotFound) {
		httputil.WriteNotFound(w, "Notification not found")
		return
	}
	if err != nil {
		logrus.Errorf("[Handler] Get notification FAILED: id=%s err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to get notification")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

// MarkRead handles PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	err := h.notifications.MarkRead(r.Context(), userID, id)
	if errors.Is(err, model.ErrNotificationNotFound) {
		httputil.WriteNotFound(w, "Notification not found")
		return
	}
	if err != nil {
		logrus.Errorf("[Handler] Mark read FAILED: id=%s err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to mark notification read")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// Delete handles DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	err := h.notifications.Delete(r.Context(), userID, id)
	if errors.Is(err, model.ErrNotificationNotFound) {
		httputil.WriteNotFound(w, "Notification not found")
		return
	}
	if err != nil {
		logrus.Errorf("[Handler] Delete notification FAILED: id=%s err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to delete notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /preferences
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	pref, err := h.notifications.GetPreferences(r.Context(), userID)
	if err != nil {
		logrus.Errorf("[Handler] Get preferences FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get preferences")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}

// UpdatePreferences handles PUT /preferences with a partial body.
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var update model.PreferenceUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	pref, err := h.notifications.UpdatePreferences(r.Context(), userID, update)
	if err != nil {
		logrus.Errorf("[Handler] Update preferences FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to update preferences")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}

// RegisterPushToken handles POST /push-token
func (h *NotificationHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req model.PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Token == "" {
		httputil.WriteBadRequest(w, "Token is required")
		return
	}
	if req.Platform != "android" && req.Platform != "ios" {
		httputil.WriteBadRequest(w, "Platform must be android or ios")
		return
	}

	if err := h.notifications.SetPushToken(r.Context(), userID, req.Platform, req.Token); err != nil {
		logrus.Errorf("[Handler] Register push token FAILED: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to register push token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
