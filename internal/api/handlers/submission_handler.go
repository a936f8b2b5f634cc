package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

type SubmissionHandler struct {
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// GetSubmission returns one submission, scoped to the calling key's
// owner. Another caller's submission reads as not found.
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := uuid.Parse(params["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	apiKey, _ := services.APIKeyFromContext(r.Context())

	submission, err := h.submissionService.Get(r.Context(), id, apiKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Submission not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Error fetching submission")
		return
	}

	respondWithJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	apiKey, ok := services.APIKeyFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := ParsePaginationParams(r)
	status := models.SubmissionStatus(r.URL.Query().Get("status"))

	submissions, err := h.submissionService.ListForUser(r.Context(), apiKey.UserID, status, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching submissions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"limit":       limit,
		"offset":      offset,
	})
}
