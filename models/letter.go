package models

import "time"

// Letter is a message written to one of the coaches together with the coach's reply.
type Letter struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:128;index;not null" json:"user_id"`
	CoachID    string    `gorm:"size:32;not null" json:"coach_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AIResponse string    `gorm:"type:text" json:"ai_response"`
	IsPrivate  bool      `gorm:"not null;default:true" json:"is_private"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
