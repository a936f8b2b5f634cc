package repository

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillingRepository interface {
	// TrackUsage applies one admitted request to the user's record for
	// the current month, creating the record on first use of the
	// period. When the request is the first paid one, the notification
	// built by onFirstPaid is inserted in the same transaction.
	TrackUsage(ctx context.Context, userID uuid.UUID, now time.Time, freeAllowance int, costPerRequest float64, onFirstPaid func(*models.BillingRecord) *models.Notification) (*models.BillingRecord, error)
	GetPeriod(ctx context.Context, userID uuid.UUID, year, month int) (*models.BillingRecord, error)
}

type billingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) BillingRepository {
	return &billingRepository{db: db}
}

func (r *billingRepository) TrackUsage(ctx context.Context, userID uuid.UUID, now time.Time, freeAllowance int, costPerRequest float64, onFirstPaid func(*models.BillingRecord) *models.Notification) (*models.BillingRecord, error) {
	period := now.UTC()
	var record models.BillingRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND year = ? AND month = ?", userID, period.Year(), int(period.Month())).
			First(&record)

		if result.Error == gorm.ErrRecordNotFound {
			record = models.BillingRecord{
				UserID: userID,
				Year:   period.Year(),
				Month:  int(period.Month()),
			}
			if err := tx.Create(&record).Error; err != nil {
				return errors.Wrap(err, "failed to create billing record")
			}
		} else if result.Error != nil {
			return errors.Wrap(result.Error, "failed to load billing record")
		}

		firstPaid := record.ApplyRequest(freeAllowance, costPerRequest)

		update := tx.Model(&record).Updates(map[string]interface{}{
			"total_requests":     record.TotalRequests,
			"free_requests_used": record.FreeRequestsUsed,
			"paid_requests":      record.PaidRequests,
			"charge":             record.Charge,
			"updated_at":         now,
		})
		if update.Error != nil {
			return errors.Wrap(update.Error, "failed to update billing record")
		}

		if firstPaid && onFirstPaid != nil {
			if notification := onFirstPaid(&record); notification != nil {
				if err := tx.Create(notification).Error; err != nil {
					return errors.Wrap(err, "failed to create billing notification")
				}
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *billingRepository) GetPeriod(ctx context.Context, userID uuid.UUID, year, month int) (*models.BillingRecord, error) {
	var record models.BillingRecord
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&record)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to get billing record")
	}

	return &record, nil
}
