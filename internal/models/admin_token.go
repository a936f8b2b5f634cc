package models

import "time"

// AdminToken is the rotating ops token accepted on admin endpoints in
// place of a personal JWT. Only the newest row is valid.
type AdminToken struct {
	ID        uint      `gorm:"primarykey"`
	Token     string    `gorm:"uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
