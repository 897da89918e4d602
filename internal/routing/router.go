package routing

import (
	"context"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

/*
Router maps a job's parameters and quality tier to the model/provider
that should execute it. Decide never fails: remote selector degradation
is absorbed into the deterministic rule table, so callers always get a
usable decision.
*/
type Router struct {
	selector ModelSelector
	log      *logger.Logger
}

func NewRouter(selector ModelSelector, baseLog *logger.Logger) *Router {
	return &Router{
		selector: selector,
		log:      baseLog.With("component", "ModelRouter"),
	}
}

func (r *Router) Decide(ctx context.Context, jobType domain.JobType, params domain.JobParams, quality domain.QualityTier) domain.RoutingDecision {
	if !quality.Valid() {
		quality = domain.QualityStandard
	}

	// Audio routing is a fixed table keyed by audio_type.
	if ap, ok := params.(*domain.AudioGenerationParams); ok {
		return audioDecision(ap.AudioType)
	}

	// Draft images run on fast local models; no remote call, no cost.
	if jobType == domain.JobTypeImage && quality == domain.QualityDraft {
		return draftImageDecision
	}

	taskType := params.Kind()
	complexity := Complexity(params, quality)

	if r.selector != nil {
		decision, err := r.selector.SelectModel(ctx, taskType, complexity, nil)
		if err == nil {
			return decision
		}
		r.log.Warn("Model selection failed, using rule-based fallback",
			"task_type", taskType,
			"complexity", complexity,
			"error", err,
		)
	}
	return fallbackDecision(jobType, quality)
}

/*
Complexity scores a task in [0,1] from the quality tier and a handful of
parameter signals. The score is reproducible from (params, quality)
alone; it feeds the remote selector as a routing feature.
*/
func Complexity(params domain.JobParams, quality domain.QualityTier) float64 {
	complexity := 0.5

	switch quality {
	case domain.QualityPremium:
		complexity += 0.3
	case domain.QualityHD:
		complexity += 0.2
	case domain.QualityStandard:
		complexity += 0.1
	}

	switch p := params.(type) {
	case *domain.TextToVideoParams:
		if p.DurationSeconds > 10 {
			complexity += 0.1
		}
		if p.CameraControls != nil {
			complexity += 0.1
		}
		if len(p.ReferenceImages) > 0 {
			complexity += 0.1
		}
	case *domain.ImageToVideoParams:
		if len(p.Keyframes) > 2 {
			complexity += 0.15
		}
	}

	if complexity > 1.0 {
		complexity = 1.0
	}
	return complexity
}
