package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// MissionController manages the user's self-care missions.
type MissionController struct {
	missions *services.MissionService
}

func NewMissionController(missions *services.MissionService) *MissionController {
	return &MissionController{missions: missions}
}

type createMissionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Recurring   bool   `json:"recurring"`
}

// List returns the missions together with today's completion stats.
func (c *MissionController) List(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	list, stats, err := c.missions.List(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, 30, "failed to list missions")
		return
	}
	utils.Success(ctx, gin.H{"items": list, "stats": stats})
}

func (c *MissionController) Create(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req createMissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid payload")
		return
	}
	m, err := c.missions.Add(ctx.Request.Context(), uid, req.Title, req.Description, req.Recurring)
	if err != nil {
		respondError(ctx, err, 31, "failed to create mission")
		return
	}
	utils.Created(ctx, m)
}

func (c *MissionController) Toggle(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	m, err := c.missions.Toggle(ctx.Request.Context(), uid, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, 32, "failed to toggle mission")
		return
	}
	utils.Success(ctx, m)
}

func (c *MissionController) Delete(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	if err := c.missions.Remove(ctx.Request.Context(), uid, ctx.Param("id")); err != nil {
		respondError(ctx, err, 33, "failed to delete mission")
		return
	}
	utils.Success(ctx, gin.H{"id": ctx.Param("id")})
}
