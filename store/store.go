// Package store defines persistence contracts for maeum and provides an in-memory and a
// gorm-backed implementation of each.
package store

import (
	"context"
	"time"

	"github.com/cppla/maeum/models"
)

// ProfileStore holds one profile per user.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	// Create fails with models.ErrAlreadyExists when the user already has a profile.
	Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error)
	Update(ctx context.Context, userID string, u models.ProfileUpdate) (models.UserProfile, error)
	Count(ctx context.Context) (int64, error)
}

// CheckInStore holds at most one check-in per user and day.
type CheckInStore interface {
	// Upsert inserts or overwrites the check-in for (c.UserID, c.Day).
	Upsert(ctx context.Context, c models.CheckIn) (models.CheckIn, error)
	Get(ctx context.Context, userID string, day models.Day) (models.CheckIn, error)
	// Days returns every checked-in day of the user in ascending order.
	Days(ctx context.Context, userID string) ([]models.Day, error)
	CountOnDay(ctx context.Context, day models.Day) (int64, error)
}

// DiaryStore holds at most one diary entry per user and day.
type DiaryStore interface {
	Upsert(ctx context.Context, e models.DiaryEntry) (models.DiaryEntry, error)
	Get(ctx context.Context, userID string, day models.Day) (models.DiaryEntry, error)
	// ListRange returns entries with from <= day <= to ordered by day ascending.
	ListRange(ctx context.Context, userID string, from, to models.Day) ([]models.DiaryEntry, error)
}

// MissionStore holds per-user habit items.
type MissionStore interface {
	// Add assigns ID, CreatedAt and clears completion state.
	Add(ctx context.Context, m models.Mission) (models.Mission, error)
	Get(ctx context.Context, id string) (models.Mission, error)
	// Toggle flips Completed, stamping CompletedAt with at when the mission becomes completed.
	Toggle(ctx context.Context, id string, at time.Time) (models.Mission, error)
	Remove(ctx context.Context, id string) error
	// List returns the user's missions in creation order.
	List(ctx context.Context, userID string) ([]models.Mission, error)
	// ResetRecurring un-completes the user's recurring missions completed before dayStart
	// and stamps LastResetDay. It returns the number of missions reset.
	ResetRecurring(ctx context.Context, userID string, today models.Day, dayStart time.Time) (int64, error)
	// UsersNeedingReset lists users owning at least one mission ResetRecurring would touch.
	UsersNeedingReset(ctx context.Context, dayStart time.Time) ([]string, error)
}

// LetterStore holds letters written to coaches.
type LetterStore interface {
	Create(ctx context.Context, l models.Letter) (models.Letter, error)
	// List returns the user's letters newest first.
	List(ctx context.Context, userID string) ([]models.Letter, error)
	// Delete removes a letter owned by userID; other users' letters are reported as not found.
	Delete(ctx context.Context, userID, id string) error
}

// PostStore holds board posts and their comments.
type PostStore interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context, q models.PostQuery) ([]models.Post, int64, error)
	Like(ctx context.Context, id string) (models.Post, error)
	// Delete removes the post and its comments.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	// AddComment stores the comment and bumps the post's comment counter.
	AddComment(ctx context.Context, c models.Comment) (models.Comment, error)
	GetComment(ctx context.Context, id string) (models.Comment, error)
	// ListComments returns a post's comments oldest first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Stores bundles one implementation of every store.
type Stores struct {
	Profiles ProfileStore
	CheckIns CheckInStore
	Diary    DiaryStore
	Missions MissionStore
	Letters  LetterStore
	Posts    PostStore
	// Ping reports backend reachability for health checks.
	Ping func(ctx context.Context) error
}

func normalizePage(q models.PostQuery) models.PostQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Sort != models.SortPopular {
		q.Sort = models.SortRecent
	}
	return q
}
