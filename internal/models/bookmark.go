package models

import (
	"time"

	"gorm.io/datatypes"
)

// Bookmark saves one article per user. ArticleData keeps the article snapshot
// (title, description, image, source) as the client sent it.
type Bookmark struct {
	ID          uint           `gorm:"primaryKey"`
	UserID      string         `gorm:"size:36;not null;uniqueIndex:idx_bookmark_user_url"`
	ArticleURL  string         `gorm:"size:768;not null;uniqueIndex:idx_bookmark_user_url"`
	ArticleData datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
