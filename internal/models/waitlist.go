package models

import (
	"time"

	"gorm.io/gorm"
)

// Signup sources
const (
	SourceDirect  = "direct"
	SourceWebhook = "webhook"
)

// WaitlistEntry is one signup per unique normalized email. Position is
// assigned once at ingestion and never reassigned.
type WaitlistEntry struct {
	gorm.Model
	Email        string `gorm:"not null;unique;index"`
	Name         string
	FirstName    string
	LastName     string
	Position     int    `gorm:"not null"`
	ReferralCode string `gorm:"not null;index"`
	// ReferredBy is a soft reference to another entry's referral code. It is
	// stored as received and not validated against an existing entry.
	ReferredBy     string
	Source         string `gorm:"not null;default:direct"`
	Confirmed      bool   `gorm:"not null;default:false"`
	SignupDate     time.Time
	EmailsSent     int `gorm:"not null;default:0"`
	LastEmailSent  *time.Time
	OptedInUpdates bool `gorm:"not null;default:false"`
	// Provenance for the webhook channel. Additive metadata only.
	SubmissionID string
}
