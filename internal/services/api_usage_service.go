package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/config"
	"moderation-api/internal/logger"
	"moderation-api/internal/metrics"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/repository"
)

// QuotaState is the rate limit view returned with every admitted (and
// every rejected) request, used to build the X-RateLimit headers.
type QuotaState struct {
	Limit     int
	Remaining int
	ResetsAt  time.Time
}

type BillingSnapshot struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	TotalRequests    int     `json:"total_requests"`
	FreeRequestsUsed int     `json:"free_requests_used"`
	PaidRequests     int     `json:"paid_requests"`
	Charge           float64 `json:"charge"`
	FreeAllowance    int     `json:"free_allowance"`
}

type UsageStats struct {
	Tier           models.APIKeyTier `json:"tier"`
	DailyLimit     int               `json:"daily_limit"`
	UsedToday      int               `json:"used_today"`
	RemainingToday int               `json:"remaining_today"`
	ResetsAt       time.Time         `json:"resets_at"`
	MonthlyPrice   float64           `json:"monthly_price"`
	Billing        BillingSnapshot   `json:"billing"`
}

type APIUsageService interface {
	// AdmitAndMeter authenticates the raw key, enforces the daily
	// quota, and meters the request for monthly billing. On
	// ErrQuotaExceeded the key and quota state are still returned.
	AdmitAndMeter(ctx context.Context, rawKey string) (*models.APIKey, *QuotaState, error)
	GetCurrentUsage(ctx context.Context, apiKey *models.APIKey) (*UsageStats, error)
}

type apiUsageService struct {
	apiKeyRepo  repository.APIKeyRepository
	billingRepo repository.BillingRepository
	tiers       *config.TierConfig
}

func NewAPIUsageService(apiKeyRepo repository.APIKeyRepository, billingRepo repository.BillingRepository, tiers *config.TierConfig) APIUsageService {
	return &apiUsageService{
		apiKeyRepo:  apiKeyRepo,
		billingRepo: billingRepo,
		tiers:       tiers,
	}
}

func (s *apiUsageService) AdmitAndMeter(ctx context.Context, rawKey string) (*models.APIKey, *QuotaState, error) {
	now := nowFunc().UTC()

	apiKey, err := s.apiKeyRepo.AdmitRequest(ctx, rawKey, now, s.tiers.DailyLimit)
	if err != nil {
		if errors.Is(err, errors.ErrQuotaExceeded) && apiKey != nil {
			metrics.QuotaRejections.Inc()
			return apiKey, s.quotaState(apiKey, now), err
		}
		return nil, nil, err
	}

	if _, err := s.billingRepo.TrackUsage(ctx, apiKey.UserID, now, s.tiers.FreeMonthlyRequests, s.tiers.CostPerRequest, s.billingNotification); err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Failed to meter request for billing", logrus.Fields{
			"user_id": apiKey.UserID.String(),
			"error":   err.Error(),
		})
		return nil, nil, err
	}

	return apiKey, s.quotaState(apiKey, now), nil
}

func (s *apiUsageService) GetCurrentUsage(ctx context.Context, apiKey *models.APIKey) (*UsageStats, error) {
	now := nowFunc().UTC()
	limit := s.tiers.DailyLimit(apiKey.Tier)

	record, err := s.billingRepo.GetPeriod(ctx, apiKey.UserID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.BillingRecord{
			UserID: apiKey.UserID,
			Year:   now.Year(),
			Month:  int(now.Month()),
		}
	}

	return &UsageStats{
		Tier:           apiKey.Tier,
		DailyLimit:     limit,
		UsedToday:      usedToday(apiKey, now),
		RemainingToday: apiKey.Remaining(now, limit),
		ResetsAt:       nextUTCMidnight(now),
		MonthlyPrice:   s.tiers.MonthlyPrice(apiKey.Tier),
		Billing: BillingSnapshot{
			Year:             record.Year,
			Month:            record.Month,
			TotalRequests:    record.TotalRequests,
			FreeRequestsUsed: record.FreeRequestsUsed,
			PaidRequests:     record.PaidRequests,
			Charge:           record.Charge,
			FreeAllowance:    s.tiers.FreeMonthlyRequests,
		},
	}, nil
}

func (s *apiUsageService) quotaState(apiKey *models.APIKey, now time.Time) *QuotaState {
	limit := s.tiers.DailyLimit(apiKey.Tier)
	return &QuotaState{
		Limit:     limit,
		Remaining: apiKey.Remaining(now, limit),
		ResetsAt:  nextUTCMidnight(now),
	}
}

func (s *apiUsageService) billingNotification(record *models.BillingRecord) *models.Notification {
	return &models.Notification{
		UserID: record.UserID,
		Type:   models.NotificationBilling,
		Title:  "Free request allowance exhausted",
		Message: fmt.Sprintf(
			"Your %d free requests for %04d-%02d are used up. Additional requests are billed at $%.2f each.",
			s.tiers.FreeMonthlyRequests, record.Year, record.Month, s.tiers.CostPerRequest,
		),
	}
}

func usedToday(apiKey *models.APIKey, now time.Time) int {
	if apiKey.ResetDue(now) {
		return 0
	}
	return apiKey.RequestsToday
}

func nextUTCMidnight(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
