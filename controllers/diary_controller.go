package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// DiaryController serves the one-line diary.
type DiaryController struct {
	diary *services.DiaryService
}

func NewDiaryController(diary *services.DiaryService) *DiaryController {
	return &DiaryController{diary: diary}
}

type diaryRequest struct {
	Content string `json:"content" binding:"required"`
	Emotion string `json:"emotion" binding:"required"`
}

// dayParam reads :day, accepting "today" as an alias.
func (c *DiaryController) dayParam(ctx *gin.Context) (models.Day, error) {
	raw := ctx.Param("day")
	if raw == "today" {
		return c.diary.Today(), nil
	}
	return models.ParseDay(raw)
}

func (c *DiaryController) Put(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	day, err := c.dayParam(ctx)
	if err != nil {
		respondError(ctx, err, 40, "invalid day")
		return
	}
	var req diaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid payload")
		return
	}
	entry, err := c.diary.Upsert(ctx.Request.Context(), uid, day, req.Content, req.Emotion)
	if err != nil {
		respondError(ctx, err, 41, "failed to save diary entry")
		return
	}
	utils.Success(ctx, entry)
}

func (c *DiaryController) Get(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	day, err := c.dayParam(ctx)
	if err != nil {
		respondError(ctx, err, 40, "invalid day")
		return
	}
	entry, err := c.diary.Get(ctx.Request.Context(), uid, day)
	if err != nil {
		respondError(ctx, err, 42, "failed to load diary entry")
		return
	}
	utils.Success(ctx, entry)
}

// List returns entries in [from, to]. Both default to the bounds of the current month.
func (c *DiaryController) List(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	today := c.diary.Today()
	from, to := models.MonthBounds(today.Time().Year(), today.Time().Month())
	if raw := ctx.Query("from"); raw != "" {
		d, err := models.ParseDay(raw)
		if err != nil {
			respondError(ctx, fmt.Errorf("from: %w", err), 43, "invalid range")
			return
		}
		from = d
	}
	if raw := ctx.Query("to"); raw != "" {
		d, err := models.ParseDay(raw)
		if err != nil {
			respondError(ctx, fmt.Errorf("to: %w", err), 43, "invalid range")
			return
		}
		to = d
	}
	entries, err := c.diary.ListRange(ctx.Request.Context(), uid, from, to)
	if err != nil {
		respondError(ctx, err, 43, "failed to list diary entries")
		return
	}
	utils.Success(ctx, gin.H{"from": from, "to": to, "items": entries})
}
