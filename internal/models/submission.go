package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"moderation-api/internal/pkg/errors"
)

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentVideo ContentKind = "video"
)

type SubmissionStatus string

const (
	StatusPendingReview SubmissionStatus = "pending_review"
	StatusApproved      SubmissionStatus = "approved"
	StatusRejected      SubmissionStatus = "rejected"
	StatusAutoApproved  SubmissionStatus = "auto_approved"
)

// Submission records a single piece of classified content together with
// the verdict and its position in the review lifecycle. Only flagged
// submissions enter pending_review; everything else is terminal on create.
type Submission struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	APIKeyID           *uuid.UUID       `gorm:"type:uuid;index" json:"api_key_id,omitempty"`
	ContentKind        ContentKind      `gorm:"type:varchar(8);not null" json:"content_type"`
	Content            string           `gorm:"type:text" json:"content,omitempty"`
	ContentRef         string           `gorm:"type:varchar(512)" json:"content_ref,omitempty"`
	Result             JSON             `gorm:"type:jsonb" json:"classification_result"`
	DetectedCategories StringArray      `gorm:"type:jsonb" json:"detected_categories"`
	Flagged            bool             `gorm:"not null;default:false" json:"flagged"`
	Status             SubmissionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Review             *Review          `gorm:"foreignKey:SubmissionID" json:"review,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = InitialStatus(s.Flagged)
	}
	return nil
}

func (Submission) TableName() string {
	return "submissions"
}

// InitialStatus maps a verdict onto the state a submission starts in.
func InitialStatus(flagged bool) SubmissionStatus {
	if flagged {
		return StatusPendingReview
	}
	return StatusAutoApproved
}

// Reviewed reports whether the submission already left pending_review.
func (s *Submission) Reviewed() bool {
	return s.Status != StatusPendingReview
}

// ApplyReview transitions the submission out of pending_review. Every
// other state is terminal and rejects the transition.
func (s *Submission) ApplyReview(decision ReviewDecision) error {
	if s.Status != StatusPendingReview {
		return errors.ErrAlreadyReviewed
	}
	s.Status = decision.SubmissionStatus()
	return nil
}

// ResponseMessage is the human-readable line included in API responses
// and webhook payloads.
func (s *Submission) ResponseMessage() string {
	if s.Flagged {
		return "Content flagged for review"
	}
	return "Content approved"
}
