package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/logger"
	"moderation-api/internal/metrics"
	"moderation-api/internal/models"
)

const webhookTimeout = 10 * time.Second

// WebhookService pushes flagged submissions to the URL configured on
// the submitting API key. Delivery is fire-and-forget: failures are
// logged and counted, never retried, and never surfaced to the caller.
type WebhookService interface {
	DispatchFlagged(apiKey *models.APIKey, submission *models.Submission)
}

type webhookService struct {
	client *http.Client
}

func NewWebhookService() WebhookService {
	return &webhookService{
		client: &http.Client{Timeout: webhookTimeout},
	}
}

func (s *webhookService) DispatchFlagged(apiKey *models.APIKey, submission *models.Submission) {
	if !shouldDispatch(apiKey, submission) {
		return
	}
	go s.deliver(apiKey.WebhookURL, submission)
}

func shouldDispatch(apiKey *models.APIKey, submission *models.Submission) bool {
	return apiKey != nil && apiKey.WebhookURL != "" && submission != nil && submission.Flagged
}

func (s *webhookService) deliver(url string, submission *models.Submission) {
	payload := map[string]interface{}{
		"submission_id":         submission.ID,
		"content_type":          submission.ContentKind,
		"status":                submission.Status,
		"flagged":               submission.Flagged,
		"detected_categories":   submission.DetectedCategories,
		"classification_result": submission.Result,
		"message":               submission.ResponseMessage(),
		"created_at":            submission.CreatedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Failed to encode webhook payload", logrus.Fields{
			"submission_id": submission.ID.String(),
			"error":         err.Error(),
		})
		return
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		logger.LogEvent(logrus.WarnLevel, "Webhook delivery failed", logrus.Fields{
			"submission_id": submission.ID.String(),
			"webhook_url":   url,
			"error":         err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
		return
	}

	metrics.WebhookDeliveries.WithLabelValues("rejected").Inc()
	logger.LogEvent(logrus.WarnLevel, "Webhook endpoint rejected delivery", logrus.Fields{
		"submission_id": submission.ID.String(),
		"webhook_url":   url,
		"status_code":   resp.StatusCode,
	})
}
