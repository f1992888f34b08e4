package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// CheckInController records daily mood check-ins.
type CheckInController struct {
	checkins *services.CheckInService
}

func NewCheckInController(checkins *services.CheckInService) *CheckInController {
	return &CheckInController{checkins: checkins}
}

type checkInRequest struct {
	Emotion    string  `json:"emotion" binding:"required"`
	Stress     int     `json:"stress" binding:"required"`
	Energy     int     `json:"energy" binding:"required"`
	SleepHours float64 `json:"sleep_hours"`
	Note       string  `json:"note"`
}

// Record stores today's check-in and returns the updated profile.
func (c *CheckInController) Record(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req checkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid payload")
		return
	}
	profile, err := c.checkins.RecordCheckIn(ctx.Request.Context(), uid, services.CheckInInput{
		Emotion:    req.Emotion,
		Stress:     req.Stress,
		Energy:     req.Energy,
		SleepHours: req.SleepHours,
		Note:       req.Note,
	})
	if err != nil {
		respondError(ctx, err, 20, "failed to record check-in")
		return
	}
	utils.Success(ctx, profile)
}

func (c *CheckInController) Today(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	ci, err := c.checkins.Today(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, 21, "failed to load check-in")
		return
	}
	utils.Success(ctx, ci)
}
