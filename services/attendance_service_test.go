package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
)

func days(ss ...string) []models.Day {
	out := make([]models.Day, len(ss))
	for i, s := range ss {
		out[i] = models.MustDay(s)
	}
	return out
}

func achieved(a Attendance) map[string]bool {
	out := map[string]bool{}
	for _, ach := range a.Achievements {
		out[ach.Code] = ach.Achieved
	}
	return out
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak(days("2024-01-01")))
	assert.Equal(t, 3, LongestStreak(days("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-05", "2024-01-06")))
	assert.Equal(t, 2, LongestStreak(days("2024-02-28", "2024-02-29", "2024-03-02")))
}

func TestCurrentStreak(t *testing.T) {
	history := days("2024-01-01", "2024-01-03", "2024-01-04", "2024-01-05")
	assert.Equal(t, 3, CurrentStreak(history, models.MustDay("2024-01-05")))
	assert.Equal(t, 3, CurrentStreak(history, models.MustDay("2024-01-06")))
	assert.Equal(t, 0, CurrentStreak(history, models.MustDay("2024-01-07")))
}

func TestProjectMonthGrid(t *testing.T) {
	a := Project(days("2024-01-31", "2024-02-01", "2024-02-02"), 2024, time.February, models.MustDay("2024-02-02"))

	assert.Equal(t, 2024, a.Year)
	assert.Equal(t, 2, a.Month)
	assert.Equal(t, 4, a.LeadingBlanks, "February 1st 2024 is a Thursday")
	require.Len(t, a.Days, 29)
	assert.True(t, a.Days[0].Checked)
	assert.True(t, a.Days[1].Checked)
	assert.True(t, a.Days[1].IsToday)
	assert.False(t, a.Days[2].Checked)
	assert.Equal(t, 2, a.MonthDays)
	assert.Equal(t, 3, a.TotalDays)
	assert.Equal(t, 3, a.CurrentStreak)
	assert.Equal(t, 3, a.LongestStreak)
	assert.False(t, achieved(a)[AchievementPerfectMonth])
}

func TestProjectAchievements(t *testing.T) {
	var history []models.Day
	for d := models.MustDay("2024-04-01"); d <= models.MustDay("2024-04-30"); d = d.AddDays(1) {
		history = append(history, d)
	}
	a := Project(history, 2024, time.April, models.MustDay("2024-05-10"))
	got := achieved(a)
	assert.True(t, got[AchievementStreak7])
	assert.True(t, got[AchievementTotal30])
	assert.False(t, got[AchievementTotal100])
	assert.True(t, got[AchievementPerfectMonth])
	assert.Equal(t, 0, a.CurrentStreak)

	// a past 7-day run keeps the badge after the streak lapses
	a = Project(days("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07", "2024-01-20"),
		2024, time.January, models.MustDay("2024-01-20"))
	got = achieved(a)
	assert.True(t, got[AchievementStreak7])
	assert.Equal(t, 1, a.CurrentStreak)
}

func TestAttendanceMonthFromCheckIns(t *testing.T) {
	svcs, clock := newTestServices(t, "2024-01-30")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	for _, d := range []string{"2024-01-30", "2024-01-31", "2024-02-01"} {
		clock.SetDay(models.MustDay(d))
		_, err := svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
		require.NoError(t, err)
	}

	year, month := svcs.Attendance.CurrentMonth()
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.February, month)

	a, err := svcs.Attendance.Month(ctx, "u1", 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, 2, a.MonthDays)
	assert.Equal(t, 3, a.CurrentStreak)

	_, err = svcs.Attendance.Month(ctx, "u1", 2024, time.Month(13))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
