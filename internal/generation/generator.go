package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

// Artifact is what the generation capability hands back: where the
// produced media lives.
type Artifact struct {
	URL          string
	ThumbnailURL string
}

// Generator is the external generation capability. Real deployments
// call provider APIs here; this deployment simulates them.
type Generator interface {
	Generate(ctx context.Context, decision domain.RoutingDecision, assetID uuid.UUID, profile Profile, params domain.JobParams) (Artifact, error)
}

/*
SimulatedGenerator stands in for provider API calls. It sleeps a
fraction of the routing decision's expected latency (capped), then
returns CDN-shaped URLs derived from the asset id.
*/
type SimulatedGenerator struct {
	cdnBaseURL string
	maxDelay   time.Duration
	log        *logger.Logger
}

func NewSimulatedGenerator(cdnBaseURL string, maxDelay time.Duration, baseLog *logger.Logger) *SimulatedGenerator {
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return &SimulatedGenerator{
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
		maxDelay:   maxDelay,
		log:        baseLog.With("component", "SimulatedGenerator"),
	}
}

func (g *SimulatedGenerator) Generate(ctx context.Context, decision domain.RoutingDecision, assetID uuid.UUID, profile Profile, params domain.JobParams) (Artifact, error) {
	delay := time.Duration(decision.ExpectedLatencyMS) * time.Millisecond / 10
	if delay > g.maxDelay {
		delay = g.maxDelay
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Artifact{}, ctx.Err()
		case <-timer.C:
		}
	}

	artifact := Artifact{
		URL: fmt.Sprintf("%s/%s/%s.%s", g.cdnBaseURL, profile.PathSegment, assetID, profile.Extension),
	}
	if profile.Thumbnail {
		artifact.ThumbnailURL = fmt.Sprintf("%s/thumbnails/%s.jpg", g.cdnBaseURL, assetID)
	}
	return artifact, nil
}
