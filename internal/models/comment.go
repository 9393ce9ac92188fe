package models

import "time"

// Comment is a user comment on an article, editable by its author only.
type Comment struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"size:36;index;not null"`
	ArticleURL string    `gorm:"size:768;index;not null"`
	Content    string    `gorm:"size:1000;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
