package middleware

import (
	"bytes"
	"moderation-api/internal/logger"
	"moderation-api/internal/models"
	"moderation-api/internal/services"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type ResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

type RequestLogger struct {
	logService services.RequestLogService
}

func NewRequestLogger(logService services.RequestLogService) *RequestLogger {
	return &RequestLogger{
		logService: logService,
	}
}

// LogRequest persists one row per authenticated request. Requests that
// never passed key admission are skipped.
func (rl *RequestLogger) LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &ResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		apiKey, ok := services.APIKeyFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		summary := createRequestSummary(r)

		next.ServeHTTP(rw, r)

		status := models.RequestStatusSuccess
		if rw.status >= 400 {
			status = models.RequestStatusError
		}

		err := rl.logService.LogRequest(
			apiKey.UserID.String(),
			apiKey.ID.String(),
			r.URL.Path,
			r.Method,
			rw.status,
			status,
			summary,
		)

		if err != nil {
			logger.Logger.WithFields(logrus.Fields{
				"error": err,
				"user":  apiKey.UserID,
				"path":  r.URL.Path,
			}).Error("Failed to log request")
		}
	})
}

func createRequestSummary(r *http.Request) string {
	parts := strings.Split(r.URL.Path, "/")
	summary := "API request"

	if len(parts) >= 4 && parts[3] == "moderate" && len(parts) > 4 {
		switch parts[4] {
		case "text":
			summary = "Text moderation request"
		case "image":
			summary = "Image moderation request"
		case "video":
			summary = "Video moderation request"
		}
	} else if len(parts) >= 4 && parts[3] == "submissions" {
		summary = "Submission lookup"
	} else if len(parts) >= 4 && parts[3] == "usage" {
		summary = "Usage report"
	}

	return summary
}
