package models

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusSuccess RequestStatus = "SUCCESS"
	RequestStatusError   RequestStatus = "ERROR"
)

// RequestLog is one row per authenticated API request, kept for support
// and abuse investigations.
type RequestLog struct {
	ID         uint   `gorm:"primarykey"`
	UserID     string `gorm:"index"`
	APIKeyID   string `gorm:"index"`
	Endpoint   string `gorm:"index"`
	Method     string
	Status     RequestStatus
	StatusCode int
	Summary    string
	Timestamp  time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
