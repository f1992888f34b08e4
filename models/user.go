package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile holds one record per authenticated user. Streak and LastCheckIn are
// written only by the check-in engine.
type UserProfile struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	DisplayName string    `gorm:"size:64;not null" json:"display_name"`
	Email       string    `gorm:"size:255" json:"email"`
	PhotoURL    string    `gorm:"size:512" json:"photo_url"`
	Streak      int       `gorm:"not null;default:0" json:"streak"`
	LastCheckIn *Day      `gorm:"size:10" json:"last_check_in"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across renames of the Go type.
func (UserProfile) TableName() string { return "user_profiles" }

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *UserProfile) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *UserProfile) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// EffectiveStreak is the streak as of today: a last check-in older than
// yesterday means the streak has lapsed.
func (u UserProfile) EffectiveStreak(today Day) int {
	if u.LastCheckIn == nil {
		return 0
	}
	last := *u.LastCheckIn
	if last == today || last == today.AddDays(-1) {
		return u.Streak
	}
	return 0
}

// ProfileUpdate carries the optional fields of a partial profile update.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	PhotoURL    *string
	Streak      *int
	LastCheckIn *Day
}
