package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/maeum/utils"
)

// MissionResetJob periodically sweeps recurring missions back to incomplete after day rollover.
type MissionResetJob struct {
	missions *MissionService
	clock    Clock
	rc       *redis.Client
	interval time.Duration
}

// NewMissionResetJob builds the sweep. rc may be nil; with Redis configured only one
// instance sweeps per interval.
func NewMissionResetJob(missions *MissionService, clock Clock, rc *redis.Client, interval time.Duration) *MissionResetJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MissionResetJob{missions: missions, clock: clock, rc: rc, interval: interval}
}

// Start launches the background loop; it stops when ctx is cancelled.
func (j *MissionResetJob) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		// run once at startup so a restart after midnight does not wait a full interval
		j.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single guarded sweep and reports whether it ran.
func (j *MissionResetJob) RunOnce(ctx context.Context) bool {
	if !j.acquire(ctx) {
		return false
	}
	users, n, err := j.missions.ResetAll(ctx)
	if err != nil {
		utils.Sugar.Warnw("mission reset sweep failed", "error", err)
		return true
	}
	if n > 0 {
		utils.Sugar.Infow("mission reset sweep", "users", users, "missions", n, "day", j.clock.Today())
	}
	return true
}

func (j *MissionResetJob) acquire(ctx context.Context) bool {
	if j.rc == nil {
		return true
	}
	key := "maeum:mission-reset:" + j.clock.Today().String()
	ok, err := j.rc.SetNX(ctx, key, "1", j.interval).Result()
	if err != nil {
		// Redis outage: sweeping twice is harmless because the reset is idempotent
		utils.Sugar.Warnw("mission reset guard unavailable", "error", err)
		return true
	}
	return ok
}
