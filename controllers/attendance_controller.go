package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// AttendanceController renders the monthly attendance calendar and badges.
type AttendanceController struct {
	attendance *services.AttendanceService
}

func NewAttendanceController(attendance *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendance: attendance}
}

func (c *AttendanceController) Month(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	year, month := c.attendance.CurrentMonth()
	if raw := ctx.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40050, "invalid year")
			return
		}
		year = y
	}
	if raw := ctx.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40050, "invalid month")
			return
		}
		month = time.Month(m)
	}
	att, err := c.attendance.Month(ctx.Request.Context(), uid, year, month)
	if err != nil {
		respondError(ctx, err, 50, "failed to load attendance")
		return
	}
	utils.Success(ctx, att)
}
