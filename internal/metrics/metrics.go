// Package metrics exposes the Prometheus collectors for the moderation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_submissions_total",
		Help: "Submissions processed, labeled by content type and initial status.",
	}, []string{"content_type", "status"})

	ClassificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_classification_failures_total",
		Help: "Classification requests that failed before a verdict was produced.",
	}, []string{"content_type"})

	QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_quota_rejections_total",
		Help: "Requests rejected because the API key exhausted its daily limit.",
	})

	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_webhook_deliveries_total",
		Help: "Webhook delivery attempts by outcome.",
	}, []string{"outcome"})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
