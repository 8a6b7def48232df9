package app

import (
	"net/http"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/middleware"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	a.registerPublicRoutes(router, c)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		submissions := api.Group("/submissions")
		{
			submissions.POST("", c.submission.CreateSubmission)
			submissions.GET("", c.submission.ListMySubmissions)
			submissions.GET("/:id", c.submission.GetSubmissionResult)
		}

		api.GET("/trust/:userId", c.trust.GetTrustScore)

		admin := api.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/queue/health", c.queue.Health)
			admin.POST("/queue/pause", c.queue.Pause)
			admin.GET("/trust", c.trust.ListTrustScores)
			admin.POST("/trust/recompute", c.trust.RecomputeAll)
			admin.GET("/trust/consistency", c.trust.CheckConsistency)
		}
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	router.POST("/api/auth/login", c.auth.Login)

	router.GET("/health", c.health.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "route not found"})
	})
}
