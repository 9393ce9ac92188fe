package models

import "time"

// Session stores the single active login per user. TokenHash is the sha256
// fingerprint of the currently valid access token; a later login replaces the
// row (upsert on user_id) and cuts off every earlier token.
type Session struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"size:36;uniqueIndex;not null"`
	TokenHash  string    `gorm:"size:64;not null"`
	DeviceInfo string    `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
