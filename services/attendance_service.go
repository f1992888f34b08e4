package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
)

// Achievement codes.
const (
	AchievementStreak7      = "streak_7"
	AchievementTotal30      = "total_30"
	AchievementTotal100     = "total_100"
	AchievementPerfectMonth = "perfect_month"
)

// Achievement is a badge derived from check-in history. It is never stored.
type Achievement struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Achieved    bool   `json:"achieved"`
}

// AttendanceDay is one cell of the calendar grid.
type AttendanceDay struct {
	Day     models.Day `json:"day"`
	Checked bool       `json:"checked"`
	IsToday bool       `json:"is_today"`
}

// Attendance is the monthly calendar projection of a user's check-ins.
type Attendance struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// LeadingBlanks is the weekday (Sunday = 0) of the first day, i.e. the number of
	// empty cells before it in a Sunday-first grid.
	LeadingBlanks int             `json:"leading_blanks"`
	Days          []AttendanceDay `json:"days"`
	TotalDays     int             `json:"total_days"`
	MonthDays     int             `json:"month_days"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	Achievements  []Achievement   `json:"achievements"`
}

// AttendanceService derives attendance from check-in history on every read.
type AttendanceService struct {
	checkins store.CheckInStore
	clock    Clock
}

func NewAttendanceService(checkins store.CheckInStore, clock Clock) *AttendanceService {
	return &AttendanceService{checkins: checkins, clock: clock}
}

// CurrentMonth returns the year and month of today.
func (s *AttendanceService) CurrentMonth() (int, time.Month) {
	t := s.clock.Today().Time()
	return t.Year(), t.Month()
}

// Month projects the user's history onto the given month.
func (s *AttendanceService) Month(ctx context.Context, userID string, year int, month time.Month) (Attendance, error) {
	if month < time.January || month > time.December || year < 1970 || year > 9999 {
		return Attendance{}, fmt.Errorf("%w: invalid month %d-%d", models.ErrInvalidInput, year, month)
	}
	days, err := s.checkins.Days(ctx, userID)
	if err != nil {
		return Attendance{}, err
	}
	return Project(days, year, month, s.clock.Today()), nil
}

// Project builds the attendance view from ascending check-in days.
func Project(days []models.Day, year int, month time.Month, today models.Day) Attendance {
	checked := make(map[models.Day]bool, len(days))
	for _, d := range days {
		checked[d] = true
	}
	first, last := models.MonthBounds(year, month)

	a := Attendance{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: int(first.Time().Weekday()),
		TotalDays:     len(checked),
		LongestStreak: LongestStreak(days),
		CurrentStreak: CurrentStreak(days, today),
	}
	perfect := true
	for d := first; d <= last; d = d.AddDays(1) {
		c := checked[d]
		a.Days = append(a.Days, AttendanceDay{Day: d, Checked: c, IsToday: d == today})
		if c {
			a.MonthDays++
		} else {
			perfect = false
		}
	}

	a.Achievements = []Achievement{
		{Code: AchievementStreak7, Title: "One week strong", Description: "Check in 7 days in a row", Achieved: a.LongestStreak >= 7},
		{Code: AchievementTotal30, Title: "Thirty days", Description: "Check in on 30 days in total", Achieved: a.TotalDays >= 30},
		{Code: AchievementTotal100, Title: "Hundred days", Description: "Check in on 100 days in total", Achieved: a.TotalDays >= 100},
		{Code: AchievementPerfectMonth, Title: "Perfect month", Description: "Check in on every day of a month", Achieved: perfect},
	}
	return a
}

// LongestStreak returns the longest run of consecutive days in ascending days.
func LongestStreak(days []models.Day) int {
	longest, run := 0, 0
	var prev models.Day
	for i, d := range days {
		switch {
		case i > 0 && d == prev:
			continue
		case i > 0 && prev.AddDays(1) == d:
			run++
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return longest
}

// CurrentStreak counts consecutive days ending today or yesterday.
func CurrentStreak(days []models.Day, today models.Day) int {
	checked := make(map[models.Day]bool, len(days))
	for _, d := range days {
		checked[d] = true
	}
	d := today
	if !checked[d] {
		d = today.AddDays(-1)
	}
	n := 0
	for checked[d] {
		n++
		d = d.AddDays(-1)
	}
	return n
}
