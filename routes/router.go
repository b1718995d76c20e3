package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/config"
	"github.com/dayflow/dayflow/controllers"
	"github.com/dayflow/dayflow/middleware"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
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
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	activityService := services.NewActivityService(db)
	badgeService := services.NewBadgeService(db)

	authController := controllers.NewAuthController(db)
	taskController := controllers.NewTaskController(db, activityService, badgeService)
	habitController := controllers.NewHabitController(db, activityService, badgeService)
	noteController := controllers.NewNoteController(db, activityService, badgeService)
	pomodoroController := controllers.NewPomodoroController(db, activityService, badgeService)
	scheduleController := controllers.NewScheduleController(db, activityService, badgeService)
	badgeController := controllers.NewBadgeController(badgeService)
	dashboardController := controllers.NewDashboardController(db, activityService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.POST("/password", middleware.AuthRequired(), authController.ChangePassword)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.GET("/tasks", taskController.List)
	protected.POST("/tasks", taskController.Create)
	protected.GET("/tasks/stats", taskController.Stats)
	protected.POST("/tasks/bulk-delete", taskController.BulkDelete)
	protected.POST("/tasks/bulk-status", taskController.BulkStatus)
	protected.GET("/tasks/:id", taskController.Get)
	protected.PUT("/tasks/:id", taskController.Update)
	protected.DELETE("/tasks/:id", taskController.Delete)
	protected.POST("/tasks/:id/subtasks/:index/toggle", taskController.ToggleSubtask)

	protected.GET("/habits", habitController.List)
	protected.POST("/habits", habitController.Create)
	protected.GET("/habits/:id/stats", habitController.Stats)
	protected.PUT("/habits/:id", habitController.Update)
	protected.DELETE("/habits/:id", habitController.Delete)
	protected.POST("/habits/:id/archive", habitController.Archive)
	protected.POST("/habits/:id/toggle", habitController.Toggle)

	protected.GET("/notes", noteController.List)
	protected.POST("/notes", noteController.Create)
	protected.GET("/notes/:id", noteController.Get)
	protected.PUT("/notes/:id", noteController.Update)
	protected.DELETE("/notes/:id", noteController.Delete)
	protected.POST("/notes/:id/pin", noteController.TogglePin)
	protected.POST("/notes/:id/archive", noteController.ToggleArchive)

	protected.GET("/pomodoros", pomodoroController.List)
	protected.POST("/pomodoros", pomodoroController.Start)
	protected.GET("/pomodoros/stats", pomodoroController.Stats)
	protected.POST("/pomodoros/:id/complete", pomodoroController.Complete)
	protected.DELETE("/pomodoros/:id", pomodoroController.Delete)

	protected.GET("/schedule", scheduleController.List)
	protected.POST("/schedule", scheduleController.Create)
	protected.PUT("/schedule/:id", scheduleController.Update)
	protected.DELETE("/schedule/:id", scheduleController.Delete)
	protected.POST("/schedule/:id/toggle", scheduleController.ToggleComplete)

	protected.GET("/badges", badgeController.Catalog)
	protected.POST("/badges/check", badgeController.Check)

	protected.GET("/dashboard", dashboardController.Summary)
	protected.GET("/dashboard/activity", dashboardController.Heatmap)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
