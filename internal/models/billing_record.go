package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingRecord accumulates one user's usage for a calendar month. The
// first FreeMonthlyRequests of the period are free, everything past that
// is charged per request.
type BillingRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_billing_user_period" json:"user_id"`
	Year             int       `gorm:"not null;uniqueIndex:idx_billing_user_period" json:"year"`
	Month            int       `gorm:"not null;uniqueIndex:idx_billing_user_period" json:"month"`
	TotalRequests    int       `gorm:"not null;default:0" json:"total_requests"`
	FreeRequestsUsed int       `gorm:"not null;default:0" json:"free_requests_used"`
	PaidRequests     int       `gorm:"not null;default:0" json:"paid_requests"`
	Charge           float64   `gorm:"not null;default:0" json:"charge"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (b *BillingRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (BillingRecord) TableName() string {
	return "billing_records"
}

// ApplyRequest records one admitted request against the period and
// recomputes the charge. It returns true exactly when this request is the
// first paid one of the period, which is the moment a billing
// notification is owed.
func (b *BillingRecord) ApplyRequest(freeAllowance int, costPerRequest float64) bool {
	b.TotalRequests++

	if b.FreeRequestsUsed < freeAllowance {
		b.FreeRequestsUsed++
		return false
	}

	b.PaidRequests++
	b.Charge = float64(b.PaidRequests) * costPerRequest
	return b.PaidRequests == 1
}
