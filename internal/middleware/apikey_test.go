package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

type fakeUsageService struct {
	apiKey *models.APIKey
	quota  *services.QuotaState
	err    error
}

func (f *fakeUsageService) AdmitAndMeter(ctx context.Context, rawKey string) (*models.APIKey, *services.QuotaState, error) {
	return f.apiKey, f.quota, f.err
}

func (f *fakeUsageService) GetCurrentUsage(ctx context.Context, apiKey *models.APIKey) (*services.UsageStats, error) {
	return nil, nil
}

func passthroughHandler(captured **models.APIKey) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey, ok := services.APIKeyFromContext(r.Context()); ok {
			*captured = apiKey
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddlewareRequiresHeader(t *testing.T) {
	var captured *models.APIKey
	handler := APIKeyMiddleware(&fakeUsageService{})(passthroughHandler(&captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate/text", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAPIKeyMiddlewareRejectsInvalidKey(t *testing.T) {
	var captured *models.APIKey
	usage := &fakeUsageService{err: errors.ErrInvalidAPIKey}
	handler := APIKeyMiddleware(usage)(passthroughHandler(&captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate/text", nil)
	req.Header.Set("x-api-key", "mk_bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAPIKeyMiddlewareRejectsExhaustedQuota(t *testing.T) {
	resetsAt := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	usage := &fakeUsageService{
		apiKey: &models.APIKey{ID: uuid.New()},
		quota:  &services.QuotaState{Limit: 50, Remaining: 0, ResetsAt: resetsAt},
		err:    errors.ErrQuotaExceeded,
	}
	var captured *models.APIKey
	handler := APIKeyMiddleware(usage)(passthroughHandler(&captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate/text", nil)
	req.Header.Set("x-api-key", "mk_exhausted")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "50", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1741651200", rec.Header().Get("X-RateLimit-Reset"))
	assert.Nil(t, captured)
}

func TestAPIKeyMiddlewareAdmitsValidKey(t *testing.T) {
	apiKey := &models.APIKey{ID: uuid.New(), UserID: uuid.New()}
	usage := &fakeUsageService{
		apiKey: apiKey,
		quota:  &services.QuotaState{Limit: 50, Remaining: 49, ResetsAt: time.Now().Add(time.Hour)},
	}
	var captured *models.APIKey
	handler := APIKeyMiddleware(usage)(passthroughHandler(&captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate/text", nil)
	req.Header.Set("x-api-key", "mk_valid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "49", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotNil(t, captured)
	assert.Equal(t, apiKey.ID, captured.ID)
}
