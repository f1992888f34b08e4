package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
)

// newTestServices builds services over memory stores with the clock fixed at noon UTC of day.
func newTestServices(t *testing.T, day string) (*Services, *FixedClock) {
	t.Helper()
	clock := FixedClockAt(models.MustDay(day))
	svcs := New(Deps{
		Stores:    store.NewMemoryStores(),
		Locker:    NewMemoryLocker(),
		Clock:     clock,
		CoachSeed: 1,
	})
	return svcs, clock
}

func ensureUser(t *testing.T, svcs *Services, userID, name string) models.UserProfile {
	t.Helper()
	p, err := svcs.Profiles.Ensure(context.Background(), Identity{UserID: userID, DisplayName: name})
	require.NoError(t, err)
	return p
}

func happyCheckIn() CheckInInput {
	return CheckInInput{Emotion: "happy", Stress: 2, Energy: 4, SleepHours: 7.5}
}
