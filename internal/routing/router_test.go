package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

type fakeSelector struct {
	calls    int
	decision domain.RoutingDecision
	err      error
}

func (f *fakeSelector) SelectModel(ctx context.Context, taskType string, complexity float64, constraints *SelectorConstraints) (domain.RoutingDecision, error) {
	f.calls++
	if f.err != nil {
		return domain.RoutingDecision{}, f.err
	}
	return f.decision, nil
}

func (f *fakeSelector) EnhancePrompt(ctx context.Context, prompt, promptContext, style string) (string, error) {
	return "", errors.New("not implemented")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestDraftImageSkipsSelector(t *testing.T) {
	sel := &fakeSelector{decision: domain.RoutingDecision{Model: "remote", Provider: "remote"}}
	r := NewRouter(sel, testLogger(t))

	got := r.Decide(context.Background(), domain.JobTypeImage,
		&domain.TextToImageParams{Prompt: "p", Quality: domain.QualityDraft}, domain.QualityDraft)

	if got.Model != "sdxl-turbo" || got.Provider != "local-sandbox" {
		t.Fatalf("draft image routed to %s/%s, want sdxl-turbo/local-sandbox", got.Model, got.Provider)
	}
	if got.ExpectedCostUSD != 0 {
		t.Fatalf("draft image cost %v, want 0", got.ExpectedCostUSD)
	}
	if sel.calls != 0 {
		t.Fatalf("draft image made %d selector calls, want 0", sel.calls)
	}
}

func TestAudioRoutedByTable(t *testing.T) {
	sel := &fakeSelector{}
	r := NewRouter(sel, testLogger(t))

	cases := map[string]string{
		"voiceover":    "elevenlabs-turbo",
		"soundtrack":   "firefly-audio",
		"sound_effect": "firefly-sfx",
		"anything":     "firefly-sfx",
	}
	for audioType, wantModel := range cases {
		got := r.Decide(context.Background(), domain.JobTypeAudio,
			&domain.AudioGenerationParams{AudioType: audioType, Prompt: "p"}, domain.QualityStandard)
		if got.Model != wantModel {
			t.Fatalf("audio %s routed to %s, want %s", audioType, got.Model, wantModel)
		}
	}
	if sel.calls != 0 {
		t.Fatalf("audio routing made %d selector calls, want 0", sel.calls)
	}
}

func TestFallbackWhenSelectorFails(t *testing.T) {
	sel := &fakeSelector{err: errors.New("connection refused")}
	r := NewRouter(sel, testLogger(t))

	params := &domain.TextToVideoParams{Prompt: "p", DurationSeconds: 15, Quality: domain.QualityPremium}
	got := r.Decide(context.Background(), domain.JobTypeVideo, params, domain.QualityPremium)
	if got.Model != "runway-gen4" {
		t.Fatalf("premium video fallback routed to %s, want runway-gen4", got.Model)
	}
	if got.ExpectedLatencyMS < 45000 {
		t.Fatalf("premium video fallback latency %d, want >= 45000", got.ExpectedLatencyMS)
	}

	got = r.Decide(context.Background(), domain.JobTypeVideo,
		&domain.TextToVideoParams{Prompt: "p"}, domain.QualityStandard)
	if got.Model != "luma-dream-machine" {
		t.Fatalf("standard video fallback routed to %s, want luma-dream-machine", got.Model)
	}

	got = r.Decide(context.Background(), domain.JobTypeWorkflow,
		&domain.WorkflowParams{WorkflowType: "storyboard"}, domain.QualityStandard)
	if got.Model != "mage-orchestrator" {
		t.Fatalf("workflow fallback routed to %s, want mage-orchestrator", got.Model)
	}
}

func TestSelectorDecisionPassedThrough(t *testing.T) {
	want := domain.RoutingDecision{
		Model:             "kling-2",
		Provider:          "kling",
		Endpoint:          "https://api.kling.example/v1",
		ExpectedLatencyMS: 30000,
		ExpectedCostUSD:   0.07,
		QualityScore:      0.9,
		Confidence:        0.8,
	}
	sel := &fakeSelector{decision: want}
	r := NewRouter(sel, testLogger(t))

	got := r.Decide(context.Background(), domain.JobTypeVideo,
		&domain.TextToVideoParams{Prompt: "p"}, domain.QualityStandard)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if sel.calls != 1 {
		t.Fatalf("selector called %d times, want 1", sel.calls)
	}
}

func TestComplexityScoring(t *testing.T) {
	params := &domain.TextToVideoParams{Prompt: "p", DurationSeconds: 15}
	if got := Complexity(params, domain.QualityPremium); got < 0.9 {
		t.Fatalf("premium 15s video complexity %v, want >= 0.9", got)
	}

	loaded := &domain.TextToVideoParams{
		Prompt:          "p",
		DurationSeconds: 15,
		CameraControls:  &domain.CameraControls{Movement: "dolly"},
		ReferenceImages: []string{"a", "b"},
	}
	if got := Complexity(loaded, domain.QualityPremium); got != 1.0 {
		t.Fatalf("fully loaded complexity %v, want clamped to 1.0", got)
	}

	if got := Complexity(&domain.ImageToVideoParams{ImageURL: "u"}, domain.QualityDraft); got != 0.5 {
		t.Fatalf("draft image-to-video complexity %v, want 0.5", got)
	}
	got := Complexity(&domain.ImageToVideoParams{
		ImageURL:  "u",
		Keyframes: []domain.Keyframe{{}, {}, {}},
	}, domain.QualityDraft)
	if got < 0.649 || got > 0.651 {
		t.Fatalf("keyframed image-to-video complexity %v, want ~0.65", got)
	}
}
