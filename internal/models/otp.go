package models

import "time"

// OTP purposes. A code issued for one purpose is never valid for the other.
const (
	OTPPurposeLogin         = "login"
	OTPPurposeResetPassword = "reset_password"
)

// OTPToken is one code issuance. At most one row per (user, purpose) has
// used = false: issuing a new code marks all earlier unused rows used first.
type OTPToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"size:36;index;not null"`
	Purpose   string    `gorm:"size:32;index;not null"`
	Code      string    `gorm:"size:8;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
