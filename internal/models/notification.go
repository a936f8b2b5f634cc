package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationReviewComplete NotificationType = "review_complete"
	NotificationBilling        NotificationType = "billing"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type         NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title        string           `gorm:"type:varchar(255);not null" json:"title"`
	Message      string           `gorm:"type:text" json:"message"`
	SubmissionID *uuid.UUID       `gorm:"type:uuid" json:"submission_id,omitempty"`
	Read         bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}
