package models

import "time"

// Comment represents a reply to a board post.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	PostID      string    `gorm:"size:36;index;not null" json:"post_id"`
	UserID      string    `gorm:"size:128;index;not null" json:"user_id"`
	AuthorName  string    `gorm:"size:64;not null" json:"author_name"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}
