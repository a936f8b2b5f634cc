package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyDailyQuota(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	key := &APIKey{Tier: TierFree, LastResetAt: now}

	limit := 50
	for i := 0; i < limit; i++ {
		require.True(t, key.CanMakeRequest(now, limit), "request %d should be admitted", i+1)
		key.RegisterRequest(now)
	}

	assert.Equal(t, limit, key.RequestsToday)
	assert.False(t, key.CanMakeRequest(now, limit))
	assert.Equal(t, 0, key.Remaining(now, limit))
}

func TestAPIKeyQuotaResetsOnNewUTCDay(t *testing.T) {
	lastDay := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	key := &APIKey{Tier: TierFree, LastResetAt: lastDay, RequestsToday: 50}

	limit := 50
	require.False(t, key.CanMakeRequest(lastDay, limit))

	nextDay := time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)
	assert.True(t, key.ResetDue(nextDay))
	assert.True(t, key.CanMakeRequest(nextDay, limit))
	assert.Equal(t, limit, key.Remaining(nextDay, limit))

	key.RegisterRequest(nextDay)
	assert.Equal(t, 1, key.RequestsToday)
	assert.Equal(t, nextDay, key.LastResetAt)
	require.NotNil(t, key.LastUsedAt)
	assert.Equal(t, nextDay, *key.LastUsedAt)
}

func TestAPIKeyResetDueComparesCalendarDays(t *testing.T) {
	key := &APIKey{LastResetAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}

	sameDay := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.False(t, key.ResetDue(sameDay))

	// A later wall-clock instant in another zone can still be the same UTC day.
	offset := time.FixedZone("UTC+3", 3*60*60)
	sameDayElsewhere := time.Date(2025, 3, 11, 1, 0, 0, 0, offset)
	assert.False(t, key.ResetDue(sameDayElsewhere))

	nextDay := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.True(t, key.ResetDue(nextDay))
}
