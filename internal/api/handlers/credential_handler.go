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

// CredentialHandler is the admin surface for issuing and managing API
// keys. Callers never create their own keys.
type CredentialHandler struct {
	apiKeyService services.APIKeyService
}

func NewCredentialHandler(apiKeyService services.APIKeyService) *CredentialHandler {
	return &CredentialHandler{apiKeyService: apiKeyService}
}

type issueKeyRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Tier       string `json:"tier"`
	WebhookURL string `json:"webhook_url"`
}

type updateKeyRequest struct {
	Tier       *string `json:"tier"`
	Active     *bool   `json:"active"`
	WebhookURL *string `json:"webhook_url"`
}

func (h *CredentialHandler) IssueKey(w http.ResponseWriter, r *http.Request) {
	var req issueKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	apiKey, err := h.apiKeyService.IssueKey(r.Context(), services.IssueKeyInput{
		Email:      req.Email,
		Name:       req.Name,
		Tier:       models.APIKeyTier(req.Tier),
		WebhookURL: req.WebhookURL,
	})
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Error issuing API key")
		return
	}

	respondWithJSON(w, http.StatusCreated, apiKey)
}

func (h *CredentialHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParsePaginationParams(r)

	keys, err := h.apiKeyService.List(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error fetching API keys")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"keys":   keys,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *CredentialHandler) UpdateKey(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := uuid.Parse(params["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid API key ID")
		return
	}

	var req updateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := services.UpdateKeyInput{
		Active:     req.Active,
		WebhookURL: req.WebhookURL,
	}
	if req.Tier != nil {
		tier := models.APIKeyTier(*req.Tier)
		input.Tier = &tier
	}

	apiKey, err := h.apiKeyService.UpdateKey(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "API key not found")
		case errors.Is(err, errors.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Error updating API key")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, apiKey)
}
