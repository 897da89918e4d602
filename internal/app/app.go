package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexusatelier/atelier-backend/internal/data/repos"
	"github.com/nexusatelier/atelier-backend/internal/db"
	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/generation"
	"github.com/nexusatelier/atelier-backend/internal/http/handlers"
	"github.com/nexusatelier/atelier-backend/internal/observability"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
	"github.com/nexusatelier/atelier-backend/internal/queue"
	"github.com/nexusatelier/atelier-backend/internal/routing"
	"github.com/nexusatelier/atelier-backend/internal/server"
	"github.com/nexusatelier/atelier-backend/internal/services"
	"github.com/nexusatelier/atelier-backend/internal/sse"
)

// App holds every wired component. All construction happens in New;
// nothing here is a package-level singleton.
type App struct {
	Log     *logger.Logger
	DB      *gorm.DB
	Router  *gin.Engine
	Cfg     Config
	Queue   *queue.Manager
	Hub     *sse.Hub
	Metrics *observability.Metrics
}

// pipelineExecutor adapts a generation pipeline to the queue's
// executor contract, which only cares about the error.
type pipelineExecutor struct {
	*generation.Pipeline
}

func (e pipelineExecutor) Execute(ctx context.Context, job *domain.Job) error {
	_, err := e.Pipeline.Execute(ctx, job)
	return err
}

func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// Repos
	jobRepo := repos.NewJobRepo(theDB, log)
	assetRepo := repos.NewAssetRepo(theDB, log)

	// SSE + notifier
	hub := sse.NewHub(log)
	notifier := services.NewSSEJobNotifier(hub, log)

	// Routing
	selector := routing.NewSelectorClient(cfg.SelectorBaseURL, cfg.SelectorTimeout, log)
	router := routing.NewRouter(selector, log)

	// Generation
	gen := generation.NewSimulatedGenerator(cfg.CDNBaseURL, cfg.MaxSimulatedDelay, log)
	pipelines := []*generation.Pipeline{
		generation.NewPipeline(generation.VideoProfile(), jobRepo, assetRepo, router, selector, gen, notifier, log),
		generation.NewPipeline(generation.ImageProfile(), jobRepo, assetRepo, router, selector, gen, notifier, log),
		generation.NewPipeline(generation.AudioProfile(), jobRepo, assetRepo, router, selector, gen, notifier, log),
		generation.NewPipeline(generation.WorkflowProfile(), jobRepo, assetRepo, router, selector, gen, notifier, log),
	}

	// Queue
	metrics := observability.NewMetrics()
	executors := make([]queue.Executor, 0, len(pipelines))
	for _, p := range pipelines {
		executors = append(executors, pipelineExecutor{p})
	}
	manager, err := queue.NewManager(cfg.Queue, jobRepo, executors, metrics, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init queue manager: %w", err)
	}

	// HTTP
	ginRouter := server.NewRouter(server.RouterConfig{
		GenerateHandler: handlers.NewGenerateHandler(pipelines, manager),
		JobHandler:      handlers.NewJobHandler(jobRepo, manager),
		AssetHandler:    handlers.NewAssetHandler(assetRepo),
		EventsHandler:   handlers.NewEventsHandler(hub, log),
		HealthHandler:   handlers.NewHealthHandler(),
		MetricsHandler:  metrics.Handler(),
		Log:             log,
		Mode:            cfg.LogMode,
	})

	return &App{
		Log:     log,
		DB:      theDB,
		Router:  ginRouter,
		Cfg:     cfg,
		Queue:   manager,
		Hub:     hub,
		Metrics: metrics,
	}, nil
}
