package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/middleware"
	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (string, bool) {
	uid := ctx.GetString(middleware.ContextUserIDKey)
	return uid, uid != ""
}

func getIdentity(ctx *gin.Context) (services.Identity, bool) {
	v, ok := ctx.Get(middleware.ContextIdentityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok && id.UserID != ""
}

// requireUser answers 401 when the request has no authenticated user.
func requireUser(ctx *gin.Context) (string, bool) {
	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return uid, ok
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with business code status*100+op. Server-side failures are
// logged and answered with fallback instead of the internal message.
func respondError(ctx *gin.Context, err error, op int, fallback string) {
	status := statusFor(err)
	code := status*100 + op
	if status >= http.StatusInternalServerError {
		utils.Sugar.Errorw(fallback, "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, status, code, fallback)
		return
	}
	utils.Error(ctx, status, code, err.Error())
}
