package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/models"
)

func flaggedSubmission() *models.Submission {
	return &models.Submission{
		ID:                 uuid.New(),
		ContentKind:        models.ContentText,
		Content:            "I will hurt you",
		Flagged:            true,
		Status:             models.StatusPendingReview,
		DetectedCategories: models.StringArray{"Violence"},
		Result:             models.JSON{"conclusion": "The text contains illicit content related to: Violence."},
		CreatedAt:          time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestWebhookDeliverPostsSubmissionPayload(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	submission := flaggedSubmission()
	svc := &webhookService{client: server.Client()}
	svc.deliver(server.URL, submission)

	assert.Equal(t, "application/json", gotContentType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, submission.ID.String(), payload["submission_id"])
	assert.Equal(t, "text", payload["content_type"])
	assert.Equal(t, "pending_review", payload["status"])
	assert.Equal(t, true, payload["flagged"])
	assert.Equal(t, []interface{}{"Violence"}, payload["detected_categories"])
	assert.Equal(t, "Content flagged for review", payload["message"])
}

func TestDispatchFlaggedDeliversInBackground(t *testing.T) {
	delivered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(delivered)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	apiKey := &models.APIKey{WebhookURL: server.URL}
	svc := &webhookService{client: server.Client()}
	svc.DispatchFlagged(apiKey, flaggedSubmission())

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}
}

func TestShouldDispatchGuards(t *testing.T) {
	submission := flaggedSubmission()
	clean := flaggedSubmission()
	clean.Flagged = false

	tests := []struct {
		name       string
		apiKey     *models.APIKey
		submission *models.Submission
		want       bool
	}{
		{"flagged with webhook", &models.APIKey{WebhookURL: "https://example.com/hook"}, submission, true},
		{"nil api key", nil, submission, false},
		{"no webhook configured", &models.APIKey{}, submission, false},
		{"nil submission", &models.APIKey{WebhookURL: "https://example.com/hook"}, nil, false},
		{"not flagged", &models.APIKey{WebhookURL: "https://example.com/hook"}, clean, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldDispatch(tt.apiKey, tt.submission))
		})
	}
}
