package services

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const maxMissionTitleLen = 255

// MissionService wraps the mission store with ownership checks and the daily reset of
// recurring missions.
type MissionService struct {
	missions store.MissionStore
	locker   Locker
	clock    Clock
}

func NewMissionService(missions store.MissionStore, locker Locker, clock Clock) *MissionService {
	return &MissionService{missions: missions, locker: locker, clock: clock}
}

// CompletionRate aggregates a mission list. An empty list has rate 0.
func CompletionRate(list []models.Mission) models.CompletionStats {
	stats := models.CompletionStats{Total: len(list)}
	for _, m := range list {
		if m.Completed {
			stats.Completed++
		}
	}
	if stats.Total == 0 {
		return stats
	}
	stats.Rate = float64(stats.Completed) / float64(stats.Total)
	stats.Percent = int(math.Round(stats.Rate * 100))
	return stats
}

// Add creates an incomplete mission owned by userID.
func (s *MissionService) Add(ctx context.Context, userID, title, description string, recurring bool) (models.Mission, error) {
	title = utils.PlainText(title)
	if title == "" {
		return models.Mission{}, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxMissionTitleLen {
		return models.Mission{}, fmt.Errorf("%w: title exceeds %d characters", models.ErrInvalidInput, maxMissionTitleLen)
	}
	var out models.Mission
	err := withUserLock(ctx, s.locker, userID, func() error {
		var err error
		out, err = s.missions.Add(ctx, models.Mission{
			UserID:      userID,
			Title:       title,
			Description: utils.PlainText(description),
			Recurring:   recurring,
		})
		return err
	})
	return out, err
}

// List returns the user's missions in creation order after applying today's reset.
func (s *MissionService) List(ctx context.Context, userID string) ([]models.Mission, models.CompletionStats, error) {
	var list []models.Mission
	err := withUserLock(ctx, s.locker, userID, func() error {
		if _, err := s.resetLocked(ctx, userID); err != nil {
			return err
		}
		var err error
		list, err = s.missions.List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, models.CompletionStats{}, err
	}
	return list, CompletionRate(list), nil
}

// Toggle flips the completion of a mission owned by userID.
func (s *MissionService) Toggle(ctx context.Context, userID, missionID string) (models.Mission, error) {
	var out models.Mission
	err := withUserLock(ctx, s.locker, userID, func() error {
		if _, err := s.owned(ctx, userID, missionID); err != nil {
			return err
		}
		if _, err := s.resetLocked(ctx, userID); err != nil {
			return err
		}
		var err error
		out, err = s.missions.Toggle(ctx, missionID, s.clock.Now())
		return err
	})
	return out, err
}

// Remove deletes a mission owned by userID. Removing it again reports not found.
func (s *MissionService) Remove(ctx context.Context, userID, missionID string) error {
	return withUserLock(ctx, s.locker, userID, func() error {
		if _, err := s.owned(ctx, userID, missionID); err != nil {
			return err
		}
		return s.missions.Remove(ctx, missionID)
	})
}

// ResetUser applies today's recurring reset for one user.
func (s *MissionService) ResetUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := withUserLock(ctx, s.locker, userID, func() error {
		var err error
		n, err = s.resetLocked(ctx, userID)
		return err
	})
	return n, err
}

// ResetAll applies today's recurring reset to every user that needs it. Each user is
// reset under their own lock so the sweep never races a toggle.
func (s *MissionService) ResetAll(ctx context.Context) (users int, missions int64, err error) {
	userIDs, err := s.missions.UsersNeedingReset(ctx, startOfDay(s.clock))
	if err != nil {
		return 0, 0, err
	}
	for _, uid := range userIDs {
		if ctx.Err() != nil {
			return users, missions, ctx.Err()
		}
		n, err := s.ResetUser(ctx, uid)
		if err != nil {
			utils.Sugar.Warnw("mission reset failed", "user_id", uid, "error", err)
			continue
		}
		users++
		missions += n
	}
	return users, missions, nil
}

func (s *MissionService) resetLocked(ctx context.Context, userID string) (int64, error) {
	return s.missions.ResetRecurring(ctx, userID, s.clock.Today(), startOfDay(s.clock))
}

// owned loads a mission and hides missions of other users behind ErrNotFound.
func (s *MissionService) owned(ctx context.Context, userID, missionID string) (models.Mission, error) {
	m, err := s.missions.Get(ctx, missionID)
	if err != nil {
		return models.Mission{}, err
	}
	if m.UserID != userID {
		return models.Mission{}, fmt.Errorf("%w: mission %s", models.ErrNotFound, missionID)
	}
	return m, nil
}
