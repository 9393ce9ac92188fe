package models

import "time"

// Like marks one user liking one article.
type Like struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_like_user_url"`
	ArticleURL string    `gorm:"size:768;not null;uniqueIndex:idx_like_user_url"`
	CreatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
