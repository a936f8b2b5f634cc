package config

import (
	"moderation-api/internal/models"
)

// TierConfig holds the per-tier quota and billing parameters.
type TierConfig struct {
	DailyLimits         map[models.APIKeyTier]int
	MonthlyPrices       map[models.APIKeyTier]float64
	FreeMonthlyRequests int
	CostPerRequest      float64
}

func NewTierConfig() *TierConfig {
	return &TierConfig{
		DailyLimits: map[models.APIKeyTier]int{
			models.TierFree:    50,
			models.TierBasic:   1000,
			models.TierPremium: 10000,
		},
		MonthlyPrices: map[models.APIKeyTier]float64{
			models.TierFree:    0,
			models.TierBasic:   9.99,
			models.TierPremium: 49.99,
		},
		FreeMonthlyRequests: 50,
		CostPerRequest:      0.01,
	}
}

// DailyLimit returns the request ceiling for a tier, falling back to the
// free tier for unknown values.
func (c *TierConfig) DailyLimit(tier models.APIKeyTier) int {
	if limit, ok := c.DailyLimits[tier]; ok {
		return limit
	}
	return c.DailyLimits[models.TierFree]
}

func (c *TierConfig) MonthlyPrice(tier models.APIKeyTier) float64 {
	return c.MonthlyPrices[tier]
}

func (c *TierConfig) IsValidTier(tier models.APIKeyTier) bool {
	_, ok := c.DailyLimits[tier]
	return ok
}
