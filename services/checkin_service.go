package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const maxNoteLen = 1000

// CheckInInput carries the fields of a daily mood check-in.
type CheckInInput struct {
	Emotion    string
	Stress     int
	Energy     int
	SleepHours float64
	Note       string
}

// CheckInService records today's check-in and keeps the profile streak in step with it.
type CheckInService struct {
	profiles store.ProfileStore
	checkins store.CheckInStore
	locker   Locker
	clock    Clock
}

func NewCheckInService(profiles store.ProfileStore, checkins store.CheckInStore, locker Locker, clock Clock) *CheckInService {
	return &CheckInService{profiles: profiles, checkins: checkins, locker: locker, clock: clock}
}

// NextStreak computes the streak after a check-in on today given the previous state.
// Same day keeps the streak, the following day extends it, anything else restarts at 1.
func NextStreak(last *models.Day, prev int, today models.Day) int {
	switch {
	case last == nil:
		return 1
	case *last == today:
		if prev < 1 {
			return 1
		}
		return prev
	case *last == today.AddDays(-1):
		return prev + 1
	default:
		return 1
	}
}

func validateCheckIn(in CheckInInput) (models.Emotion, string, error) {
	emotion, err := models.ParseEmotion(in.Emotion)
	if err != nil {
		return "", "", err
	}
	if in.Stress < 1 || in.Stress > 5 {
		return "", "", fmt.Errorf("%w: stress must be between 1 and 5", models.ErrInvalidInput)
	}
	if in.Energy < 1 || in.Energy > 5 {
		return "", "", fmt.Errorf("%w: energy must be between 1 and 5", models.ErrInvalidInput)
	}
	if in.SleepHours < 0 || in.SleepHours > 24 {
		return "", "", fmt.Errorf("%w: sleep hours must be between 0 and 24", models.ErrInvalidInput)
	}
	note := utils.PlainText(in.Note)
	if utf8.RuneCountInString(note) > maxNoteLen {
		return "", "", fmt.Errorf("%w: note exceeds %d characters", models.ErrInvalidInput, maxNoteLen)
	}
	return emotion, note, nil
}

// RecordCheckIn upserts today's check-in for userID and returns the updated profile.
// The profile must exist. Repeating the call on the same day overwrites the check-in
// without touching the streak.
func (s *CheckInService) RecordCheckIn(ctx context.Context, userID string, in CheckInInput) (models.UserProfile, error) {
	today := s.clock.Today()
	emotion, note, err := validateCheckIn(in)
	if err != nil {
		return models.UserProfile{}, err
	}

	var out models.UserProfile
	err = withUserLock(ctx, s.locker, userID, func() error {
		profile, err := s.profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.checkins.Upsert(ctx, models.CheckIn{
			UserID:     userID,
			Day:        today,
			Emotion:    emotion,
			Stress:     in.Stress,
			Energy:     in.Energy,
			SleepHours: in.SleepHours,
			Note:       note,
		}); err != nil {
			return err
		}

		streak := NextStreak(profile.LastCheckIn, profile.Streak, today)
		out, err = s.profiles.Update(ctx, userID, models.ProfileUpdate{Streak: &streak, LastCheckIn: &today})
		return err
	})
	if err != nil {
		return models.UserProfile{}, err
	}
	utils.Sugar.Debugw("check-in recorded", "user_id", userID, "day", today, "streak", out.Streak)
	return out, nil
}

// Today returns the caller's check-in for today.
func (s *CheckInService) Today(ctx context.Context, userID string) (models.CheckIn, error) {
	return s.checkins.Get(ctx, userID, s.clock.Today())
}
