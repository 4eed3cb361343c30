package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/config"
	"github.com/kaiazoo/zooquest/controllers"
	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

// Engines bundles the reward engines the routes depend on.
type Engines struct {
	Streak    *rewards.StreakEngine
	Tasks     *rewards.TaskEngine
	Referrals *rewards.ReferralEngine
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(s store.Store, engines Engines) *gin.Engine {
	// Load config and set Gin mode from configuration
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

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(s, engines.Referrals)
	userController := controllers.NewUserController(s)
	taskController := controllers.NewTaskController(s, engines.Tasks)
	rewardController := controllers.NewRewardController(engines.Streak)
	referralController := controllers.NewReferralController(engines.Referrals)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Task catalog is public; signed-in callers get per-task status.
	api.GET("/tasks", middleware.OptionalAuth(), taskController.List)
	api.GET("/tasks/:id", taskController.Get)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/users/profile", userController.GetProfile)
	protected.PUT("/users/profile", userController.UpdateProfile)

	protected.POST("/tasks/:id/complete", taskController.Complete)
	protected.GET("/tasks/user/completed", taskController.Completed)

	protected.GET("/rewards/login-streak", rewardController.LoginStreak)
	protected.POST("/rewards/claim-daily", rewardController.ClaimDaily)
	protected.GET("/rewards/transactions", rewardController.Transactions)

	protected.GET("/referrals", referralController.List)
	protected.GET("/achievements", taskController.Achievements)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
