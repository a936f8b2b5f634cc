package handlers

import (
	"net/http"

	"moderation-api/internal/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetModerationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetModerationStats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching moderation stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
