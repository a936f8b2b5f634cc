package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

type ReviewHandler struct {
	submissionService services.SubmissionService
}

func NewReviewHandler(submissionService services.SubmissionService) *ReviewHandler {
	return &ReviewHandler{submissionService: submissionService}
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Comments string `json:"comments"`
}

// ReviewSubmission records a human decision on a flagged submission.
// A submission can be reviewed exactly once.
func (h *ReviewHandler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	admin, ok := services.AdminFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params := mux.Vars(r)
	id, err := uuid.Parse(params["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	decision, err := models.ParseReviewDecision(req.Decision)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Decision must be approved or rejected")
		return
	}

	submission, err := h.submissionService.Review(r.Context(), id, admin, decision, req.Comments)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Submission not found")
		case errors.Is(err, errors.ErrAlreadyReviewed):
			respondWithError(w, http.StatusConflict, "Submission has already been reviewed")
		case errors.Is(err, errors.ErrInsufficientPermission):
			respondWithError(w, http.StatusForbidden, "Ops tokens cannot record review decisions")
		default:
			respondWithError(w, http.StatusInternalServerError, "Error reviewing submission")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, submission)
}

// ListQueue returns the review queue, oldest first. Defaults to
// pending_review, a status query parameter selects other states.
func (h *ReviewHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	if _, ok := services.AdminFromContext(r.Context()); !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := ParsePaginationParams(r)
	status := models.SubmissionStatus(r.URL.Query().Get("status"))

	submissions, err := h.submissionService.Queue(r.Context(), status, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching review queue")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"limit":       limit,
		"offset":      offset,
	})
}
