package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/controllers"
	"github.com/crewfit/fitcircle/middleware"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	llm := services.NewLLMClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel)

	authController := controllers.NewAuthController(db)
	checkinController := controllers.NewCheckInController(db, llm)
	metricsController := controllers.NewMetricsController(db, llm)
	postController := controllers.NewPostController(db)
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public surfaces
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	// Daily check-ins
	protected.POST("/checkins", checkinController.SubmitCheckIn)
	protected.GET("/checkins", checkinController.ListMyCheckIns)
	protected.GET("/checkins/date/:date", checkinController.GetCheckInByDate)
	protected.POST("/upload", checkinController.UploadProofPhoto)

	// Scoring views
	protected.GET("/metrics/me", metricsController.GetMyMetrics)
	protected.GET("/groups/:id/leaderboard", metricsController.GetGroupLeaderboard)
	protected.GET("/groups/:id/analytics",
		middleware.RequireOperation(services.OpAnalyticsView), metricsController.GetGroupAnalytics)

	// Badges
	protected.GET("/badges/me", metricsController.ListMyBadges)
	protected.POST("/badges/check", metricsController.CheckBadges)

	// Body metrics and meal suggestions
	protected.POST("/body-metrics", metricsController.CreateBodyMetric)
	protected.GET("/body-metrics/me", metricsController.ListMyBodyMetrics)
	protected.GET("/meals/suggestion", metricsController.GetMealSuggestion)

	// Community feed
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.DELETE("/comments/:commentId", postController.DeleteComment)
	protected.GET("/users/me/posts", postController.ListMyPosts)

	// Admin and leader operations, gated per capability
	admin := protected.Group("/admin")
	admin.POST("/attendance",
		middleware.RequireOperation(services.OpAttendanceMark), adminController.MarkAttendance)
	admin.POST("/adjustments",
		middleware.RequireOperation(services.OpAdjustmentCreate), adminController.CreateAdjustment)
	admin.GET("/adjustments",
		middleware.RequireOperation(services.OpAdjustmentCreate), adminController.ListAdjustments)
	admin.PUT("/checkins",
		middleware.RequireOperation(services.OpCheckinUpsert), adminController.UpsertCheckIn)
	admin.DELETE("/checkins/:id",
		middleware.RequireOperation(services.OpCheckinUpsert), adminController.DeleteCheckIn)
	admin.POST("/challenges",
		middleware.RequireOperation(services.OpChallengeManage), adminController.CreateChallenge)
	admin.POST("/groups",
		middleware.RequireOperation(services.OpGroupManage), adminController.CreateGroup)
	admin.GET("/users",
		middleware.RequireOperation(services.OpUserManage), adminController.ListUsers)
	admin.PATCH("/users/:id/group",
		middleware.RequireOperation(services.OpUserManage), adminController.AssignUserGroup)
	admin.DELETE("/users/:id",
		middleware.RequireOperation(services.OpUserManage), adminController.DeleteUser)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
