// Package httpapi serves the REST API, health and Prometheus metrics over gin.
package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	AllowedOrigins []string
	Release        bool
}

// SetupRouter creates and configures the gin router.
func SetupRouter(cfg Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	if cors := CORSMiddleware(cfg.AllowedOrigins); cors != nil {
		router.Use(cors)
	}
	router.Use(ActorMiddleware())

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", handler.CreateJob)
			jobs.GET("", handler.ListJobs)
			jobs.GET("/export.xlsx", handler.ExportJobs)
			jobs.GET("/:id", handler.GetJob)
			jobs.POST("/:id/analyze", handler.AnalyzeJob)
			jobs.POST("/:id/status", handler.SetJobStatus)
			jobs.POST("/:id/comments", handler.AddReviewComment)
		}
		ingest := v1.Group("/ingest")
		{
			ingest.POST("/file", handler.IngestFile)
			ingest.POST("/directory", handler.IngestDirectory)
		}
	}

	return router
}
