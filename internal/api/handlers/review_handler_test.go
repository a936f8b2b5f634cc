package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

func adminRequest(method, target string, body *bytes.Buffer, id uuid.UUID) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	admin := &services.AdminIdentity{ID: uuid.New(), Role: "admin"}
	return req.WithContext(services.WithAdminContext(req.Context(), admin))
}

func pendingForReview() (*fakeSubmissionService, uuid.UUID) {
	userID := uuid.New()
	submission := &models.Submission{
		ID:          uuid.New(),
		UserID:      &userID,
		ContentKind: models.ContentText,
		Flagged:     true,
		Status:      models.StatusPendingReview,
	}
	return &fakeSubmissionService{submitted: submission}, submission.ID
}

func TestReviewSubmissionApproves(t *testing.T) {
	submissions, id := pendingForReview()
	h := NewReviewHandler(submissions)

	body := bytes.NewBufferString(`{"decision": "approved", "comments": "checked manually"}`)
	req := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review", body, id)
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusApproved, resp.Status)
}

func TestReviewSubmissionSecondDecisionConflicts(t *testing.T) {
	submissions, id := pendingForReview()
	h := NewReviewHandler(submissions)

	first := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review",
		bytes.NewBufferString(`{"decision": "rejected"}`), id)
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review",
		bytes.NewBufferString(`{"decision": "approved"}`), id)
	rec = httptest.NewRecorder()
	h.ReviewSubmission(rec, second)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReviewSubmissionRequiresAdmin(t *testing.T) {
	submissions, id := pendingForReview()
	h := NewReviewHandler(submissions)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review",
		bytes.NewBufferString(`{"decision": "approved"}`))
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewSubmissionRejectsUnknownDecision(t *testing.T) {
	submissions, id := pendingForReview()
	h := NewReviewHandler(submissions)

	body := bytes.NewBufferString(`{"decision": "maybe"}`)
	req := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review", body, id)
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewSubmissionNotFound(t *testing.T) {
	submissions, _ := pendingForReview()
	h := NewReviewHandler(submissions)

	missing := uuid.New()
	body := bytes.NewBufferString(`{"decision": "approved"}`)
	req := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+missing.String()+"/review", body, missing)
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewSubmissionForbiddenForOpsToken(t *testing.T) {
	submissions, id := pendingForReview()
	submissions.reviewErr = errors.ErrInsufficientPermission
	h := NewReviewHandler(submissions)

	body := bytes.NewBufferString(`{"decision": "approved"}`)
	req := adminRequest(http.MethodPost, "/api/v1/admin/submissions/"+id.String()+"/review", body, id)
	rec := httptest.NewRecorder()
	h.ReviewSubmission(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
