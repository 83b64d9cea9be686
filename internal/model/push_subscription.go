package model

import "time"

// PushSubscription holds a browser push subscription and the washers it
// wants finish notifications for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Devices []*Device `gorm:"many2many:subscription_device_mapping;"`
}
