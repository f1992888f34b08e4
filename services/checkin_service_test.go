package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
)

func TestNextStreak(t *testing.T) {
	today := models.MustDay("2024-01-10")
	day := func(s string) *models.Day { d := models.MustDay(s); return &d }

	assert.Equal(t, 1, NextStreak(nil, 0, today))
	assert.Equal(t, 3, NextStreak(day("2024-01-10"), 3, today))
	assert.Equal(t, 1, NextStreak(day("2024-01-10"), 0, today))
	assert.Equal(t, 4, NextStreak(day("2024-01-09"), 3, today))
	assert.Equal(t, 1, NextStreak(day("2024-01-07"), 3, today))
	// last check-in ahead of today after the clock went backwards
	assert.Equal(t, 1, NextStreak(day("2024-01-11"), 3, today))
}

func TestRecordCheckInStreakSequence(t *testing.T) {
	svcs, clock := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	p, err := svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	require.NotNil(t, p.LastCheckIn)
	assert.Equal(t, models.Day("2024-01-01"), *p.LastCheckIn)

	clock.SetDay("2024-01-02")
	p, err = svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak)

	// a second check-in the same day overwrites the record and keeps the streak
	in := happyCheckIn()
	in.Emotion = "calm"
	p, err = svcs.CheckIns.RecordCheckIn(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak)
	ci, err := svcs.CheckIns.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EmotionCalm, ci.Emotion)

	clock.SetDay("2024-01-05")
	got, err := svcs.Profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Streak, "lapsed streak reads as zero")

	p, err = svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
}

func TestRecordCheckInAfterClockMovedBack(t *testing.T) {
	svcs, clock := newTestServices(t, "2024-01-10")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	for _, d := range []string{"2024-01-10", "2024-01-11", "2024-01-12"} {
		clock.SetDay(models.Day(d))
		_, err := svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
		require.NoError(t, err)
	}

	clock.SetDay("2024-01-09")
	p, err := svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	require.NotNil(t, p.LastCheckIn)
	assert.Equal(t, models.Day("2024-01-09"), *p.LastCheckIn)
}

func TestRecordCheckInRequiresProfile(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	_, err := svcs.CheckIns.RecordCheckIn(context.Background(), "ghost", happyCheckIn())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordCheckInValidation(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ensureUser(t, svcs, "u1", "Mina")

	cases := map[string]func(*CheckInInput){
		"unknown emotion": func(in *CheckInInput) { in.Emotion = "furious" },
		"stress too low":  func(in *CheckInInput) { in.Stress = 0 },
		"energy too high": func(in *CheckInInput) { in.Energy = 6 },
		"negative sleep":  func(in *CheckInInput) { in.SleepHours = -1 },
		"too much sleep":  func(in *CheckInInput) { in.SleepHours = 25 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := happyCheckIn()
			mutate(&in)
			_, err := svcs.CheckIns.RecordCheckIn(context.Background(), "u1", in)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestTodayWithoutCheckIn(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ensureUser(t, svcs, "u1", "Mina")
	_, err := svcs.CheckIns.Today(context.Background(), "u1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
