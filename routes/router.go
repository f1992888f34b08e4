package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/config"
	"github.com/cppla/maeum/controllers"
	"github.com/cppla/maeum/middleware"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// SetupRouter wires routes, middlewares, and controllers. metrics may be nil.
func SetupRouter(cfg config.AppConfig, svcs *services.Services, verifier middleware.TokenVerifier, metrics *middleware.Metrics) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// access log goes to its own rolling file when one is configured
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewAccessLogger(cfg)
		if err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnw("gin access log unavailable, using application logger", "path", cfg.GinPath, "error", err)
		}
	}
	r.Use(utils.AccessLog(accessLog))
	r.Use(utils.Recovery(accessLog))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if metrics != nil {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler(cfg.MetricsUser, cfg.MetricsPassword))
	}

	profileController := controllers.NewProfileController(svcs.Profiles)
	checkInController := controllers.NewCheckInController(svcs.CheckIns)
	missionController := controllers.NewMissionController(svcs.Missions)
	diaryController := controllers.NewDiaryController(svcs.Diary)
	attendanceController := controllers.NewAttendanceController(svcs.Attendance)
	coachController := controllers.NewCoachController(svcs.Coach)
	postController := controllers.NewPostController(svcs.Board)
	statsController := controllers.NewStatsController(svcs.Stats)
	configController := controllers.NewConfigController(svcs.Quotes, svcs.Clock)

	r.GET("/health", statsController.Health)

	api := r.Group("/api/v1")

	// Public endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/config/notice", configController.GetNotice)
	api.GET("/quote", configController.GetQuote)
	api.GET("/coaches", coachController.Coaches)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", postController.ListComments)

	protected := api.Group("")
	protected.Use(
		middleware.AuthRequired(verifier),
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute),
		middleware.EnsureProfile(svcs.Profiles),
	)

	protected.GET("/me", profileController.Me)
	protected.PATCH("/me", profileController.Update)

	protected.POST("/checkins", checkInController.Record)
	protected.GET("/checkins/today", checkInController.Today)

	protected.GET("/missions", missionController.List)
	protected.POST("/missions", missionController.Create)
	protected.POST("/missions/:id/toggle", missionController.Toggle)
	protected.DELETE("/missions/:id", missionController.Delete)

	protected.GET("/diary", diaryController.List)
	protected.GET("/diary/:day", diaryController.Get)
	protected.PUT("/diary/:day", diaryController.Put)

	protected.GET("/attendance", attendanceController.Month)

	protected.POST("/coach/reply", coachController.Reply)
	protected.GET("/letters", coachController.ListLetters)
	protected.POST("/letters", coachController.WriteLetter)
	protected.DELETE("/letters/:id", coachController.DeleteLetter)

	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", postController.LikePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.DELETE("/comments/:commentId", postController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	})

	return r
}
