package app

import (
	"time"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/envutil"
	"github.com/nexusatelier/atelier-backend/internal/queue"
)

type Config struct {
	Port    string
	LogMode string

	SelectorBaseURL string
	SelectorTimeout time.Duration

	CDNBaseURL        string
	MaxSimulatedDelay time.Duration

	Queue queue.Config

	ShutdownTimeout time.Duration
}

func LoadConfig() Config {
	qcfg := queue.DefaultConfig()
	qcfg.Concurrency[domain.JobTypeVideo] = envutil.Int("QUEUE_VIDEO_CONCURRENCY", 10)
	qcfg.Concurrency[domain.JobTypeImage] = envutil.Int("QUEUE_IMAGE_CONCURRENCY", 50)
	qcfg.Concurrency[domain.JobTypeAudio] = envutil.Int("QUEUE_AUDIO_CONCURRENCY", 20)
	qcfg.Concurrency[domain.JobTypeWorkflow] = envutil.Int("QUEUE_WORKFLOW_CONCURRENCY", 5)
	qcfg.MaxAttempts = envutil.Int("QUEUE_MAX_ATTEMPTS", 3)
	qcfg.BackoffInitial = envutil.Duration("QUEUE_BACKOFF_INITIAL", 2*time.Second)
	qcfg.BackoffMax = envutil.Duration("QUEUE_BACKOFF_MAX", 30*time.Second)

	return Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		SelectorBaseURL: envutil.String("MODEL_SELECTOR_URL", "http://localhost:9400"),
		SelectorTimeout: envutil.Duration("MODEL_SELECTOR_TIMEOUT", 5*time.Second),

		CDNBaseURL:        envutil.String("CDN_BASE_URL", "https://cdn.nexusatelier.dev"),
		MaxSimulatedDelay: envutil.Duration("MAX_SIMULATED_DELAY", 5*time.Second),

		Queue: qcfg,

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}
