package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const maxDiaryLen = 2000

// DiaryService keeps one entry per user and day.
type DiaryService struct {
	diary  store.DiaryStore
	locker Locker
	clock  Clock
}

func NewDiaryService(diary store.DiaryStore, locker Locker, clock Clock) *DiaryService {
	return &DiaryService{diary: diary, locker: locker, clock: clock}
}

// Today is the calendar day diary routes resolve "today" to.
func (s *DiaryService) Today() models.Day { return s.clock.Today() }

// Upsert saves the entry for day, replacing an earlier entry of the same day.
func (s *DiaryService) Upsert(ctx context.Context, userID string, day models.Day, content, emotion string) (models.DiaryEntry, error) {
	if day.After(s.clock.Today()) {
		return models.DiaryEntry{}, fmt.Errorf("%w: cannot write a diary entry for a future day", models.ErrInvalidInput)
	}
	content = utils.PlainText(content)
	if content == "" {
		return models.DiaryEntry{}, fmt.Errorf("%w: content is required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxDiaryLen {
		return models.DiaryEntry{}, fmt.Errorf("%w: content exceeds %d characters", models.ErrInvalidInput, maxDiaryLen)
	}
	e, err := models.ParseEmotion(emotion)
	if err != nil {
		return models.DiaryEntry{}, err
	}

	var out models.DiaryEntry
	err = withUserLock(ctx, s.locker, userID, func() error {
		var err error
		out, err = s.diary.Upsert(ctx, models.DiaryEntry{UserID: userID, Day: day, Content: content, Emotion: e})
		return err
	})
	return out, err
}

// Get returns the entry for day.
func (s *DiaryService) Get(ctx context.Context, userID string, day models.Day) (models.DiaryEntry, error) {
	return s.diary.Get(ctx, userID, day)
}

// ListRange returns entries between from and to inclusive, oldest first.
func (s *DiaryService) ListRange(ctx context.Context, userID string, from, to models.Day) ([]models.DiaryEntry, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to are required", models.ErrInvalidInput)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", models.ErrInvalidInput)
	}
	return s.diary.ListRange(ctx, userID, from, to)
}
