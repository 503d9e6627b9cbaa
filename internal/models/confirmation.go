package models

import "time"

// ConfirmationRecord is best-effort bookkeeping for an issued confirmation
// token. Token validation is stateless; absence of a record never fails it.
type ConfirmationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null;uniqueIndex"`
	Email     string `gorm:"not null;index"`
	Position  int
	Confirmed bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}
