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

type ReviewRepository interface {
	// CreateWithTransition persists the review and moves its submission
	// out of pending_review in one transaction. The notify callback may
	// return a notification to insert atomically with the review, so a
	// submitter is told exactly once.
	CreateWithTransition(ctx context.Context, review *models.Review, notify func(*models.Submission, *models.Review) *models.Notification) (*models.Submission, error)
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateWithTransition(ctx context.Context, review *models.Review, notify func(*models.Submission, *models.Review) *models.Notification) (*models.Submission, error) {
	var submission models.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the submission so two reviewers deciding at the same
		// moment cannot both pass the state check. The unique index on
		// reviews.submission_id backstops this.
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&submission, "id = ?", review.SubmissionID)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return errors.ErrNotFound
			}
			return errors.Wrap(result.Error, "failed to load submission")
		}

		if err := submission.ApplyReview(review.Decision); err != nil {
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return errors.Wrap(err, "failed to create review")
		}

		update := tx.Model(&submission).Updates(map[string]interface{}{
			"status":     submission.Status,
			"updated_at": time.Now(),
		})
		if update.Error != nil {
			return errors.Wrap(update.Error, "failed to update submission status")
		}

		if notify != nil {
			if notification := notify(&submission, review); notification != nil {
				if err := tx.Create(notification).Error; err != nil {
					return errors.Wrap(err, "failed to create review notification")
				}
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	submission.Review = review
	return &submission, nil
}

func (r *reviewRepository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*models.Review, error) {
	var review models.Review
	result := r.db.WithContext(ctx).First(&review, "submission_id = ?", submissionID)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get review by submission ID")
	}

	return &review, nil
}
