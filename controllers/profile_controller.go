package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// ProfileController serves the signed-in user's own profile.
type ProfileController struct {
	profiles *services.ProfileService
}

func NewProfileController(profiles *services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
}

// Me creates the profile on first sign-in and returns it.
func (c *ProfileController) Me(ctx *gin.Context) {
	id, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	p, err := c.profiles.Ensure(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, 10, "failed to load profile")
		return
	}
	utils.Success(ctx, p)
}

func (c *ProfileController) Update(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid payload")
		return
	}
	p, err := c.profiles.UpdateDetails(ctx.Request.Context(), uid, req.DisplayName, req.PhotoURL)
	if err != nil {
		respondError(ctx, err, 11, "failed to update profile")
		return
	}
	utils.Success(ctx, p)
}
