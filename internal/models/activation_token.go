package models

import "time"

// ActivationToken holds the short-lived numeric code a user must redeem to
// activate their account. The composite primary key makes the
// (user_id, code) lookup used during activation an index hit, and lookups are
// never performed by code alone.
type ActivationToken struct {
	UserID string `gorm:"primaryKey;type:uuid" json:"user_id"`
	Code   string `gorm:"primaryKey;size:16" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
