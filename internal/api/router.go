package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/analysis"
	"github.com/jengzang/cotraj-backend-go/internal/config"
	"github.com/jengzang/cotraj-backend-go/internal/database"
	"github.com/jengzang/cotraj-backend-go/internal/handler"
	"github.com/jengzang/cotraj-backend-go/internal/middleware"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rateLimiter := middleware.NewRateLimiter(300, time.Minute)
	r.Use(rateLimiter.Middleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Co-Trajectory Backend API is running",
		})
	})

	// Wiring
	db := database.GetDB()
	deps := analysis.Deps{
		Workers:           cfg.Workers,
		MapMatchURL:       cfg.MapMatchURL,
		TimeResolution:    cfg.DefaultTimeResolution,
		SpatialResolution: cfg.DefaultSpatialResolution,
	}

	trackRepo := repository.NewTrackRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	taskRepo := repository.NewAnalysisTaskRepository(db)

	trackService := service.NewTrackService(trackRepo)
	statsService := service.NewStatsService(trackRepo, statsRepo)
	taskService := service.NewAnalysisTaskService(taskRepo, db, deps)
	vizService := service.NewVisualizationService(trackRepo)

	authHandler := handler.NewAuthHandler(cfg)
	trackHandler := handler.NewTrackHandler(trackService)
	statsHandler := handler.NewStatsHandler(statsService, cfg)
	taskHandler := handler.NewAnalysisTaskHandler(taskService)
	vizHandler := handler.NewVisualizationHandler(vizService)

	// API 路由组
	api := r.Group("/api/v1")
	{
		api.POST("/auth/token", authHandler.Token)

		// 轨迹相关接口
		tracks := api.Group("/trajectories")
		{
			tracks.GET("", trackHandler.ListTrajectories)
			tracks.POST("", middleware.Auth(cfg.JWTSecret), trackHandler.UploadTrajectory)
			tracks.GET("/:id", trackHandler.GetTrajectory)
			tracks.GET("/:id/days", trackHandler.SplitTrajectory)
			tracks.GET("/:id/jumpchain", statsHandler.GetJumpchain)
			tracks.GET("/:id/export", vizHandler.ExportTrajectory)
		}

		// 统计接口
		stats := api.Group("/stats")
		{
			stats.GET("/transitions", statsHandler.GetTransitionStats)
			stats.GET("/partitions", statsHandler.GetPartitionIndex)
		}

		// 分析任务接口
		tasks := api.Group("/analysis/tasks")
		{
			tasks.POST("", middleware.Auth(cfg.JWTSecret), taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
		}
	}

	return r
}
