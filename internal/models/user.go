package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus enumerates the account lifecycle states. The transition is
// monotonic: a user is born pending and reaches active exactly once.
type UserStatus string

const (
	StatusPending UserStatus = "pending"
	StatusActive  UserStatus = "active"
)

// User represents a registered account.
type User struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Status       UserStatus `gorm:"not null;default:pending" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	// UpdatedAt stays nil until the first status change; the store sets it
	// explicitly instead of relying on gorm's automatic tracking.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the account reached its terminal state.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
