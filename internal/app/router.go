package app

import (
	"work_readiness_backend/docs"
	"work_readiness_backend/internal/config"
	"work_readiness_backend/internal/middleware"
	"work_readiness_backend/internal/model"

	"work_readiness_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 工人接口
	a.registerWorkerRoutes(router, c, cfg)

	// 3. 班组长/主管接口
	a.registerTeamLeaderRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerWorkerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	worker := router.Group("/api/worker")
	worker.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Worker))
	{
		worker.GET("/cycle", c.readiness.GetCycle)
		worker.POST("/assessments", c.readiness.SubmitAssessment)
		worker.GET("/streak", c.readiness.GetStreak)
		worker.GET("/kpi", c.readiness.GetMyKPI)
	}
}

func (a *App) registerTeamLeaderRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	team := router.Group("/api/team-leader")
	team.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.TeamLeader, model.Supervisor))
	{
		team.GET("/workers/:id/kpi", c.team.GetWorkerKPI)
		team.POST("/reports/kpi", c.team.ExportReport)
		team.POST("/assignments", c.team.ScheduleAssignments)
		// WebSocket 实时推送，token 通过 query 传递
		team.GET("/live", c.team.Live)
	}
}
