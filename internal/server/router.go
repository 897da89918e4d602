package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexusatelier/atelier-backend/internal/http/handlers"
	"github.com/nexusatelier/atelier-backend/internal/http/middleware"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

type RouterConfig struct {
	GenerateHandler *handlers.GenerateHandler
	JobHandler      *handlers.JobHandler
	AssetHandler    *handlers.AssetHandler
	EventsHandler   *handlers.EventsHandler
	HealthHandler   *handlers.HealthHandler

	MetricsHandler http.Handler
	Log            *logger.Logger
	Mode           string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "prod" || cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity())
	r.Use(middleware.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		if cfg.GenerateHandler != nil {
			api.POST("/video/generate/text", cfg.GenerateHandler.TextToVideo)
			api.POST("/video/generate/image", cfg.GenerateHandler.ImageToVideo)
			api.POST("/video/transform", cfg.GenerateHandler.VideoToVideo)
			api.POST("/image/generate/text", cfg.GenerateHandler.TextToImage)
			api.POST("/image/edit", cfg.GenerateHandler.ImageEdit)
			api.POST("/audio/generate", cfg.GenerateHandler.Audio)
			api.POST("/workflow/run", cfg.GenerateHandler.Workflow)
		}

		if cfg.JobHandler != nil {
			api.GET("/jobs", cfg.JobHandler.ListJobs)
			api.GET("/jobs/stats", cfg.JobHandler.JobStats)
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
			api.GET("/jobs/:id/result", cfg.JobHandler.GetResult)
			api.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
			api.GET("/queue/stats", cfg.JobHandler.QueueStats)
		}

		if cfg.AssetHandler != nil {
			api.GET("/assets", cfg.AssetHandler.ListAssets)
			api.GET("/assets/:id", cfg.AssetHandler.GetAsset)
		}

		if cfg.EventsHandler != nil {
			api.GET("/events", cfg.EventsHandler.Stream)
		}
	}

	return r
}
