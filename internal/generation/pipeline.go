package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nexusatelier/atelier-backend/internal/data/repos"
	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
	"github.com/nexusatelier/atelier-backend/internal/routing"
	"github.com/nexusatelier/atelier-backend/internal/services"
)

/*
Pipeline drives one job type end to end: submit persists a queued job,
execute runs one attempt (route, generate, persist asset + result or
error). One Pipeline instance exists per job type; behavior differences
between types live entirely in the Profile.
*/
type Pipeline struct {
	profile  Profile
	jobs     repos.JobRepo
	assets   repos.AssetRepo
	router   *routing.Router
	selector routing.ModelSelector
	gen      Generator
	notify   services.JobNotifier
	log      *logger.Logger
}

func NewPipeline(
	profile Profile,
	jobs repos.JobRepo,
	assets repos.AssetRepo,
	router *routing.Router,
	selector routing.ModelSelector,
	gen Generator,
	notify services.JobNotifier,
	baseLog *logger.Logger,
) *Pipeline {
	return &Pipeline{
		profile:  profile,
		jobs:     jobs,
		assets:   assets,
		router:   router,
		selector: selector,
		gen:      gen,
		notify:   notify,
		log:      baseLog.With("component", "GenerationPipeline", "job_type", string(profile.Type)),
	}
}

func (p *Pipeline) Type() domain.JobType { return p.profile.Type }

/*
Submit validates params, prices the job, and persists it as queued.
It does not start execution; the caller hands the job to the queue.
*/
func (p *Pipeline) Submit(ctx context.Context, userID uuid.UUID, params domain.JobParams, projectID *uuid.UUID) (*domain.Job, error) {
	if params == nil {
		return nil, fmt.Errorf("missing params")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	jobType, err := domain.JobTypeForKind(params.Kind())
	if err != nil {
		return nil, err
	}
	if jobType != p.profile.Type {
		return nil, fmt.Errorf("params type %q does not belong to the %s pipeline", params.Kind(), p.profile.Type)
	}

	p.enhancePrompt(ctx, params)

	job, err := p.jobs.Create(ctx, nil, userID, p.profile.Type, params, projectID, domain.DefaultPriority)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	p.log.Info("Generation job created",
		"job_id", job.ID,
		"user_id", userID,
		"task_type", params.Kind(),
		"credits", job.CreditsUsed,
	)
	if p.notify != nil {
		p.notify.JobQueued(userID, job)
	}
	return job, nil
}

// enhancePrompt rewrites a text-to-video prompt through the selector
// service. Best effort: any failure keeps the original prompt.
func (p *Pipeline) enhancePrompt(ctx context.Context, params domain.JobParams) {
	tv, ok := params.(*domain.TextToVideoParams)
	if !ok || p.selector == nil {
		return
	}
	enhanced, err := p.selector.EnhancePrompt(ctx, tv.Prompt, "Video generation, style: "+tv.Style, tv.Style)
	if err != nil {
		p.log.Warn("Prompt enhancement skipped", "error", err)
		return
	}
	p.log.Debug("Prompt enhanced", "original", tv.Prompt, "enhanced", enhanced)
	tv.Prompt = enhanced
}

/*
Execute runs one attempt for a claimed job. On success the job ends
completed with a persisted asset and result. On failure a retryable
JobError is persisted and the cause is returned so the queue's retry
policy can act on it.
*/
func (p *Pipeline) Execute(ctx context.Context, job *domain.Job) (*domain.JobResult, error) {
	started := time.Now()

	params, err := job.DecodedParams()
	if err != nil {
		return nil, p.failJob(ctx, job, fmt.Errorf("decode params: %w", err))
	}

	ok, err := p.jobs.MarkProcessing(ctx, nil, job.ID)
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if !ok {
		return nil, domain.ErrJobNotRunnable
	}
	if p.notify != nil {
		p.notify.JobStarted(job.UserID, job)
	}

	quality := domain.QualityFor(params)
	decision := p.router.Decide(ctx, job.Type, params, quality)

	p.log.Info("Model routing decision",
		"job_id", job.ID,
		"model", decision.Model,
		"provider", decision.Provider,
		"expected_latency_ms", decision.ExpectedLatencyMS,
		"expected_cost_usd", decision.ExpectedCostUSD,
	)

	assetID := uuid.New()
	genCtx, cancel := context.WithTimeout(ctx, generationBudget(decision))
	artifact, err := p.gen.Generate(genCtx, decision, assetID, p.profile, params)
	cancel()
	if err != nil {
		return nil, p.failJob(ctx, job, fmt.Errorf("generate: %w", err))
	}

	shape := p.profile.shape(params)
	metadata, err := json.Marshal(shape.AssetMetadata)
	if err != nil {
		return nil, p.failJob(ctx, job, fmt.Errorf("encode asset metadata: %w", err))
	}
	asset := &domain.Asset{
		ID:              assetID,
		UserID:          job.UserID,
		ProjectID:       job.ProjectID,
		JobID:           job.ID,
		Type:            p.profile.AssetKind,
		URL:             artifact.URL,
		ThumbnailURL:    artifact.ThumbnailURL,
		Metadata:        datatypes.JSON(metadata),
		DurationSeconds: shape.DurationSeconds,
		Resolution:      shape.Resolution,
		Format:          shape.Format,
		CreatedAt:       time.Now(),
	}
	if err := p.assets.Create(ctx, nil, asset); err != nil {
		return nil, p.failJob(ctx, job, fmt.Errorf("persist asset: %w", err))
	}

	result := &domain.JobResult{
		AssetID:      asset.ID,
		URL:          artifact.URL,
		ThumbnailURL: artifact.ThumbnailURL,
		Metadata:     shape.ResultMetadata,
		QualityScore: decision.QualityScore,
		ModelUsed:    decision.Model,
	}
	ok, err = p.jobs.SetResult(ctx, nil, job.ID, result)
	if err != nil {
		return nil, p.failJob(ctx, job, fmt.Errorf("persist result: %w", err))
	}
	if !ok {
		// The job went terminal (or was cancelled) under us. Remove the
		// asset created by this attempt so no completed-looking artifact
		// dangles off a non-completed job.
		if delErr := p.assets.Delete(ctx, nil, asset.ID); delErr != nil {
			p.log.Error("Orphaned asset cleanup failed", "asset_id", asset.ID, "job_id", job.ID, "error", delErr)
		}
		return nil, domain.ErrJobNotRunnable
	}

	p.log.Info("Generation completed",
		"job_id", job.ID,
		"asset_id", asset.ID,
		"model", decision.Model,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if p.notify != nil {
		p.notify.JobCompleted(job.UserID, job, result)
	}
	return result, nil
}

// failJob persists the terminal failure for this attempt and hands the
// cause back for the retry policy. A rejected write means the job went
// terminal elsewhere; the cause is still returned.
func (p *Pipeline) failJob(ctx context.Context, job *domain.Job, cause error) error {
	p.log.Error("Generation failed", "job_id", job.ID, "error", cause)
	jobErr := &domain.JobError{
		Code:       domain.ErrCodeGenerationFailed,
		Message:    cause.Error(),
		Retryable:  true,
		Suggestion: "Try again with a simpler prompt or a lower quality tier",
	}
	ok, err := p.jobs.SetError(ctx, nil, job.ID, jobErr)
	if err != nil {
		p.log.Error("Persisting job error failed", "job_id", job.ID, "error", err)
	}
	if ok && p.notify != nil {
		p.notify.JobFailed(job.UserID, job, jobErr)
	}
	return cause
}

func generationBudget(decision domain.RoutingDecision) time.Duration {
	budget := time.Duration(decision.ExpectedLatencyMS) * time.Millisecond
	if budget < time.Second {
		budget = time.Second
	}
	return budget
}
