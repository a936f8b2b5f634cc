package handlers

import (
	"encoding/json"
	"moderation-api/internal/services"
	"net/http"
	"time"
)

type RequestLogHandler struct {
	logService services.RequestLogService
}

func NewRequestLogHandler(logService services.RequestLogService) *RequestLogHandler {
	return &RequestLogHandler{
		logService: logService,
	}
}

// ListRequestLogs is the admin view over per-request logs, filtered by
// either user_id or endpoint.
func (h *RequestLogHandler) ListRequestLogs(w http.ResponseWriter, r *http.Request) {
	from, to := getTimeRange(r)

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		logs, err := h.logService.GetUserLogs(userID, from, to)
		if err != nil {
			http.Error(w, "Error fetching logs", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logs)
		return
	}

	if endpoint := r.URL.Query().Get("endpoint"); endpoint != "" {
		logs, err := h.logService.GetEndpointLogs(endpoint, from, to)
		if err != nil {
			http.Error(w, "Error fetching logs", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logs)
		return
	}

	http.Error(w, "user_id or endpoint query parameter is required", http.StatusBadRequest)
}

func getTimeRange(r *http.Request) (time.Time, time.Time) {
	now := time.Now()
	from := now.AddDate(0, -1, 0) // Default to last 30 days
	to := now

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if parsedFrom, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = parsedFrom
		}
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if parsedTo, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = parsedTo
		}
	}

	return from, to
}
