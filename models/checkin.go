package models

import "time"

// CheckIn is the daily mood record. One row per (user, day); later check-ins on the
// same day overwrite the earlier one.
type CheckIn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:128;not null;uniqueIndex:idx_checkin_user_day" json:"user_id"`
	Day        Day       `gorm:"size:10;not null;uniqueIndex:idx_checkin_user_day;index" json:"day"`
	Emotion    Emotion   `gorm:"size:16;not null" json:"emotion"`
	Stress     int       `gorm:"not null" json:"stress"`
	Energy     int       `gorm:"not null" json:"energy"`
	SleepHours float64   `gorm:"not null" json:"sleep_hours"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
