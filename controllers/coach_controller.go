package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// CoachController exposes the AI coaches and the letters written to them.
type CoachController struct {
	coach *services.CoachService
}

func NewCoachController(coach *services.CoachService) *CoachController {
	return &CoachController{coach: coach}
}

type replyRequest struct {
	CoachID string `json:"coach_id"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type letterRequest struct {
	CoachID   string `json:"coach_id"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	IsPrivate *bool  `json:"is_private"`
}

func (c *CoachController) Coaches(ctx *gin.Context) {
	utils.Success(ctx, services.Coaches())
}

// Reply answers without storing anything.
func (c *CoachController) Reply(ctx *gin.Context) {
	var req replyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid payload")
		return
	}
	text, err := c.coach.Reply(ctx.Request.Context(), req.CoachID, req.Title, req.Content)
	if err != nil {
		respondError(ctx, err, 60, "failed to generate reply")
		return
	}
	utils.Success(ctx, gin.H{"coach_id": coachOrDefault(req.CoachID), "reply": text})
}

func (c *CoachController) ListLetters(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	letters, err := c.coach.List(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, 61, "failed to list letters")
		return
	}
	utils.Success(ctx, letters)
}

// WriteLetter stores a letter with the coach's reply. Letters are private unless stated otherwise.
func (c *CoachController) WriteLetter(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req letterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid payload")
		return
	}
	private := true
	if req.IsPrivate != nil {
		private = *req.IsPrivate
	}
	letter, err := c.coach.Write(ctx.Request.Context(), uid, req.CoachID, req.Title, req.Content, private)
	if err != nil {
		respondError(ctx, err, 62, "failed to save letter")
		return
	}
	utils.Created(ctx, letter)
}

func (c *CoachController) DeleteLetter(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	if err := c.coach.Delete(ctx.Request.Context(), uid, ctx.Param("id")); err != nil {
		respondError(ctx, err, 63, "failed to delete letter")
		return
	}
	utils.Success(ctx, gin.H{"id": ctx.Param("id")})
}

func coachOrDefault(id string) string {
	if id == "" {
		return services.DefaultCoachID
	}
	return id
}
