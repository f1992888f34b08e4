package models

import "time"

// AnonymousAuthor replaces the author name of anonymous posts and comments.
const AnonymousAuthor = "Anonymous"

// Board categories.
const (
	CategoryChallenge = "challenge"
	CategoryConcern   = "concern"
	CategoryInfo      = "info"
	CategoryReview    = "review"
)

// Categories lists the board categories in display order.
var Categories = []string{CategoryChallenge, CategoryConcern, CategoryInfo, CategoryReview}

// ValidCategory reports whether c is a known board category.
func ValidCategory(c string) bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Post represents a community board post.
type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:128;index;not null" json:"user_id"`
	AuthorName  string    `gorm:"size:64;not null" json:"author_name"`
	Category    string    `gorm:"size:32;index;not null" json:"category"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	Comments    int       `gorm:"not null;default:0" json:"comments"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post sort orders.
const (
	SortRecent  = "recent"
	SortPopular = "popular"
)

// PostQuery filters and pages a board listing. An empty Category means all.
type PostQuery struct {
	Category string
	Sort     string
	Page     int
	PageSize int
}
