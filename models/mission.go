package models

import "time"

// Mission is a user-defined habit item with a daily completion flag.
type Mission struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"size:128;not null;uniqueIndex:idx_mission_user_seq,priority:1" json:"user_id"`
	// Seq is the per-user insertion position; List orders by it.
	Seq          int64      `gorm:"not null;uniqueIndex:idx_mission_user_seq,priority:2" json:"-"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	Recurring    bool       `gorm:"not null;default:false;index" json:"recurring"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	LastResetDay *Day       `gorm:"size:10" json:"last_reset_day,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NeedsReset reports whether a recurring mission completed before dayStart (midnight of
// today in the user's zone) should reappear as incomplete. A mission completed today never
// matches, so resetting is idempotent.
func (m Mission) NeedsReset(dayStart time.Time) bool {
	if !m.Recurring || !m.Completed {
		return false
	}
	return m.CompletedAt == nil || m.CompletedAt.Before(dayStart)
}

// CompletionStats is the read-side aggregate of a mission list.
type CompletionStats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
	Percent   int     `json:"percent"`
}
