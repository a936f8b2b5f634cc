package handlers

import (
	"encoding/json"
	"moderation-api/internal/services"
	"net/http"
)

type UsageHandler struct {
	usageService services.APIUsageService
}

func NewUsageHandler(usageService services.APIUsageService) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

func (h *UsageHandler) GetCurrentUsage(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := services.APIKeyFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.usageService.GetCurrentUsage(r.Context(), apiKey)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
