package models

import "time"

// DiaryEntry is the one-line diary of a day. Saving twice on the same day replaces the entry.
type DiaryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_diary_user_day" json:"user_id"`
	Day       Day       `gorm:"size:10;not null;uniqueIndex:idx_diary_user_day" json:"day"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Emotion   Emotion   `gorm:"size:16;not null" json:"emotion"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
