package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)

// Review is the single human decision attached to a flagged submission.
// The unique index on SubmissionID enforces the one-review rule at the
// database level as well.
type Review struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"submission_id"`
	ReviewerID   uuid.UUID      `gorm:"type:uuid;not null" json:"reviewer_id"`
	Decision     ReviewDecision `gorm:"type:varchar(16);not null" json:"decision"`
	Comments     string         `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}

func ParseReviewDecision(value string) (ReviewDecision, error) {
	switch ReviewDecision(value) {
	case DecisionApproved:
		return DecisionApproved, nil
	case DecisionRejected:
		return DecisionRejected, nil
	default:
		return "", fmt.Errorf("unknown review decision %q", value)
	}
}

// SubmissionStatus maps the decision onto the terminal submission state.
func (d ReviewDecision) SubmissionStatus() SubmissionStatus {
	if d == DecisionRejected {
		return StatusRejected
	}
	return StatusApproved
}
