package repository

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error)
	CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int64, error)
	CountByKind(ctx context.Context) (map[models.ContentKind]int64, error)
	Recent(ctx context.Context, limit int) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	result := r.db.WithContext(ctx).Create(submission)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create submission")
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	result := r.db.WithContext(ctx).
		Preload("Review").
		First(&submission, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get submission by ID")
	}

	return &submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uuid.UUID, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var submissions []models.Submission
	result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&submissions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list submissions")
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	var submissions []models.Submission
	result := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&submissions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list submissions by status")
	}

	return submissions, nil
}

func (r *submissionRepository) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int64, error) {
	var rows []struct {
		Status models.SubmissionStatus
		Count  int64
	}
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to count submissions by status")
	}

	counts := make(map[models.SubmissionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *submissionRepository) CountByKind(ctx context.Context) (map[models.ContentKind]int64, error) {
	var rows []struct {
		ContentKind models.ContentKind
		Count       int64
	}
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("content_kind, count(*) as count").
		Group("content_kind").
		Scan(&rows)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to count submissions by content kind")
	}

	counts := make(map[models.ContentKind]int64, len(rows))
	for _, row := range rows {
		counts[row.ContentKind] = row.Count
	}
	return counts, nil
}

func (r *submissionRepository) Recent(ctx context.Context, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&submissions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list recent submissions")
	}

	return submissions, nil
}
