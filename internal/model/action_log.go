package model

import "time"

// ActionLog records a start or stop command and whether the washer took it.
type ActionLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DeviceID  string    `gorm:"size:128;not null;index" json:"device_id"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	Params    string    `gorm:"not null" json:"params"`
	Success   bool      `gorm:"not null" json:"success"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
