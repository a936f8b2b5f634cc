package repository

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	result := r.db.WithContext(ctx).Create(notification)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create notification")
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list notifications")
	}

	return notifications, nil
}

// MarkRead is scoped to the owning user so one caller cannot touch
// another caller's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark notification read")
	}

	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark notifications read")
	}

	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count)

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count unread notifications")
	}

	return count, nil
}
