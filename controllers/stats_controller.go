package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// StatsController provides service counters and the health check.
type StatsController struct {
	stats *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats returns user, post and today's check-in counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	st, err := s.stats.Counts(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, 80, "failed to load stats")
		return
	}
	utils.Success(ctx, st)
}

func (s *StatsController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.stats.Ping(pingCtx); err != nil {
		utils.Sugar.Warnw("health check failed", "error", err)
		utils.Respond(ctx, http.StatusServiceUnavailable, 50381, "database unavailable", gin.H{"status": "degraded"})
		return
	}
	utils.Success(ctx, gin.H{"status": "ok", "time": time.Now().UTC()})
}
