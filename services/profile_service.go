package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const maxDisplayNameLen = 64

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	PhotoURL    string
}

// ProfileService owns profile lifecycle outside of streak bookkeeping.
type ProfileService struct {
	profiles store.ProfileStore
	clock    Clock
}

func NewProfileService(profiles store.ProfileStore, clock Clock) *ProfileService {
	return &ProfileService{profiles: profiles, clock: clock}
}

// Ensure returns the caller's profile, creating it on first sign-in. A concurrent
// creation of the same profile is treated as success.
func (s *ProfileService) Ensure(ctx context.Context, id Identity) (models.UserProfile, error) {
	if id.UserID == "" {
		return models.UserProfile{}, fmt.Errorf("%w: empty user id", models.ErrInvalidInput)
	}
	p, err := s.profiles.Get(ctx, id.UserID)
	if err == nil {
		return s.effective(p), nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.UserProfile{}, err
	}

	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		name = defaultDisplayName(id)
	}
	p, err = s.profiles.Create(ctx, models.UserProfile{
		ID:          id.UserID,
		DisplayName: truncate(name, maxDisplayNameLen),
		Email:       id.Email,
		PhotoURL:    id.PhotoURL,
	})
	if errors.Is(err, models.ErrAlreadyExists) {
		p, err = s.profiles.Get(ctx, id.UserID)
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	utils.Sugar.Infow("profile created", "user_id", id.UserID)
	return s.effective(p), nil
}

// Get returns the profile with the streak as of today.
func (s *ProfileService) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	return s.effective(p), nil
}

// UpdateDetails changes the user-editable fields. Streak fields are not editable here.
func (s *ProfileService) UpdateDetails(ctx context.Context, userID string, displayName, photoURL *string) (models.UserProfile, error) {
	u := models.ProfileUpdate{}
	if displayName != nil {
		name := utils.PlainText(*displayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
			return models.UserProfile{}, fmt.Errorf("%w: display name must be 1-%d characters", models.ErrInvalidInput, maxDisplayNameLen)
		}
		u.DisplayName = &name
	}
	if photoURL != nil {
		url := strings.TrimSpace(*photoURL)
		u.PhotoURL = &url
	}
	p, err := s.profiles.Update(ctx, userID, u)
	if err != nil {
		return models.UserProfile{}, err
	}
	return s.effective(p), nil
}

func (s *ProfileService) effective(p models.UserProfile) models.UserProfile {
	p.Streak = p.EffectiveStreak(s.clock.Today())
	return p
}

func defaultDisplayName(id Identity) string {
	if at := strings.Index(id.Email, "@"); at > 0 {
		return id.Email[:at]
	}
	return "friend"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
