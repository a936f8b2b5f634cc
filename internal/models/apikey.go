package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APIKeyTier string

const (
	TierFree    APIKeyTier = "free"
	TierBasic   APIKeyTier = "basic"
	TierPremium APIKeyTier = "premium"
)

// APIKey is the credential callers present on every moderation request.
// The daily counter is reset lazily: nothing touches the row until the
// first request of a new UTC day arrives.
type APIKey struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Key           string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"key"`
	Name          string         `gorm:"type:varchar(255)" json:"name,omitempty"`
	Tier          APIKeyTier     `gorm:"type:varchar(16);not null;default:'free'" json:"tier"`
	RequestsToday int            `gorm:"not null;default:0" json:"requests_today"`
	LastResetAt   time.Time      `json:"last_reset_at"`
	LastUsedAt    *time.Time     `json:"last_used_at,omitempty"`
	WebhookURL    string         `gorm:"type:varchar(512)" json:"webhook_url,omitempty"`
	Active        bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.LastResetAt.IsZero() {
		k.LastResetAt = time.Now().UTC()
	}
	return nil
}

func (APIKey) TableName() string {
	return "api_keys"
}

// ResetDue reports whether now falls on a later UTC calendar day than the
// last counter reset.
func (k *APIKey) ResetDue(now time.Time) bool {
	if k.LastResetAt.IsZero() {
		return true
	}
	ly, lm, ld := k.LastResetAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}

// CanMakeRequest reports whether the key is under its daily limit. A key
// whose reset is due always has the full allowance available.
func (k *APIKey) CanMakeRequest(now time.Time, limit int) bool {
	if k.ResetDue(now) {
		return limit > 0
	}
	return k.RequestsToday < limit
}

// RegisterRequest resets the counter if a new UTC day has started, then
// records one request against the key.
func (k *APIKey) RegisterRequest(now time.Time) {
	if k.ResetDue(now) {
		k.RequestsToday = 0
		k.LastResetAt = now.UTC()
	}
	k.RequestsToday++
	used := now.UTC()
	k.LastUsedAt = &used
}

// Remaining returns how many requests the key may still make today.
func (k *APIKey) Remaining(now time.Time, limit int) int {
	if k.ResetDue(now) {
		return limit
	}
	remaining := limit - k.RequestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}
