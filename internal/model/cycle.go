package model

import "time"

// CycleOpen is the washer's current running state (hot table). A row exists
// only while the machine is in a running mode.
type CycleOpen struct {
	DeviceID         string    `gorm:"primaryKey;size:128"`
	ObservedAt       time.Time `gorm:"not null"`
	Mode             int       `gorm:"not null"`
	Program          string    `gorm:"size:128;not null"`
	RemainingSeconds int       `gorm:"not null"`
}

// CycleHistory is one finished mode period (cold table).
type CycleHistory struct {
	DeviceID    string    `gorm:"size:128;not null;index;primaryKey"`
	ObservedAt  time.Time `gorm:"not null;index;primaryKey"` // when the period's end was observed
	Mode        int       `gorm:"not null"`
	Program     string    `gorm:"size:128;not null"`
	PeriodStart time.Time `gorm:"not null"`
	PeriodEnd   time.Time `gorm:"not null"` // predicted end
}
