package services

import (
	"context"

	"github.com/cppla/maeum/store"
)

// Stats are the public service counters.
type Stats struct {
	Users         int64 `json:"users"`
	Posts         int64 `json:"posts"`
	CheckInsToday int64 `json:"check_ins_today"`
}

// StatsService aggregates counters across stores.
type StatsService struct {
	stores store.Stores
	clock  Clock
}

func NewStatsService(stores store.Stores, clock Clock) *StatsService {
	return &StatsService{stores: stores, clock: clock}
}

func (s *StatsService) Counts(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Users, err = s.stores.Profiles.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Posts, err = s.stores.Posts.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.CheckInsToday, err = s.stores.CheckIns.CountOnDay(ctx, s.clock.Today()); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Ping checks the storage backend.
func (s *StatsService) Ping(ctx context.Context) error {
	if s.stores.Ping == nil {
		return nil
	}
	return s.stores.Ping(ctx)
}
