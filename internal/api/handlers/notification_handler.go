package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := services.APIKeyFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := ParsePaginationParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationService.ListForUser(r.Context(), apiKey.UserID, unreadOnly, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching notifications")
		return
	}

	unread, err := h.notificationService.UnreadCount(r.Context(), apiKey.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := services.APIKeyFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params := mux.Vars(r)
	id, err := uuid.Parse(params["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, apiKey.UserID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Notification not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Error updating notification")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := services.APIKeyFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), apiKey.UserID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error updating notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
