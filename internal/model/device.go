package model

import "time"

// Device is one configured washer.
type Device struct {
	ID        string    `gorm:"primaryKey;size:128"` // derived from the host
	Name      string    `gorm:"size:256;not null"`
	Host      string    `gorm:"uniqueIndex;size:256;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
