package models

import "time"

// CounterID is the primary key of the singleton aggregate row.
const CounterID = 1

// WaitlistCounter is the authoritative position sequence and the aggregate
// signup count. Positions come from an atomic increment of Count; prefix
// counting over entries is only a display estimate.
type WaitlistCounter struct {
	ID          uint `gorm:"primaryKey"`
	Count       int  `gorm:"not null;default:0"`
	LastUpdated time.Time
}
