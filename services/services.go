// Package services holds maeum's domain logic on top of the store interfaces.
package services

import (
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

// Deps are the collaborators shared by all services.
type Deps struct {
	Stores    store.Stores
	Locker    Locker
	Clock     Clock
	Responder Responder
	Cache     *utils.Cache
	CoachSeed int64
}

// Services is the set of domain services handed to the HTTP layer.
type Services struct {
	Clock      Clock
	Profiles   *ProfileService
	CheckIns   *CheckInService
	Missions   *MissionService
	Diary      *DiaryService
	Attendance *AttendanceService
	Coach      *CoachService
	Board      *BoardService
	Quotes     *QuoteService
	Stats      *StatsService
}

// New constructs every service from d. Missing Locker and Clock default to in-process ones.
func New(d Deps) *Services {
	if d.Locker == nil {
		d.Locker = NewMemoryLocker()
	}
	if d.Clock == nil {
		d.Clock = NewSystemClock(nil)
	}
	st := d.Stores
	return &Services{
		Clock:      d.Clock,
		Profiles:   NewProfileService(st.Profiles, d.Clock),
		CheckIns:   NewCheckInService(st.Profiles, st.CheckIns, d.Locker, d.Clock),
		Missions:   NewMissionService(st.Missions, d.Locker, d.Clock),
		Diary:      NewDiaryService(st.Diary, d.Locker, d.Clock),
		Attendance: NewAttendanceService(st.CheckIns, d.Clock),
		Coach:      NewCoachService(st.Letters, d.Responder, d.CoachSeed),
		Board:      NewBoardService(st.Posts, st.Profiles, d.Cache),
		Quotes:     NewQuoteService(),
		Stats:      NewStatsService(st, d.Clock),
	}
}
