package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents application user. Email is stored lower-cased and unique.
// IsFirstLogin drives the OTP step-up on the first password login.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	FullName     string    `gorm:"size:128;not null"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	IsFirstLogin bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Public returns the fields exposed to clients (never the hash).
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}
}
