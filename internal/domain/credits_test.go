package domain

import "testing"

func TestEstimateCreditsVideo(t *testing.T) {
	got := EstimateCredits(JobTypeVideo, &TextToVideoParams{Prompt: "p", DurationSeconds: 10, Quality: QualityPremium})
	if got != 160 {
		t.Fatalf("premium 10s video: got %d credits, want 160", got)
	}

	// Duration defaults to 5s, quality to standard.
	got = EstimateCredits(JobTypeVideo, &TextToVideoParams{Prompt: "p"})
	if got != 20 {
		t.Fatalf("default video: got %d credits, want 20", got)
	}

	got = EstimateCredits(JobTypeVideo, &ImageToVideoParams{ImageURL: "u", DurationSeconds: 3})
	if got != 12 {
		t.Fatalf("3s image-to-video: got %d credits, want 12", got)
	}
}

func TestEstimateCreditsImageTiers(t *testing.T) {
	cases := []struct {
		quality QualityTier
		want    int
	}{
		{QualityDraft, 1},
		{QualityStandard, 5},
		{QualityHD, 15},
		{QualityPremium, 30},
	}
	for _, tc := range cases {
		got := EstimateCredits(JobTypeImage, &TextToImageParams{Prompt: "p", Quality: tc.quality})
		if got != tc.want {
			t.Fatalf("image %s: got %d credits, want %d", tc.quality, got, tc.want)
		}
	}

	// Image-edit params carry no quality by default: standard pricing.
	if got := EstimateCredits(JobTypeImage, &ImageEditParams{ImageURL: "u", Operation: "inpaint"}); got != 5 {
		t.Fatalf("image edit: got %d credits, want 5", got)
	}
}

func TestEstimateCreditsAudio(t *testing.T) {
	if got := EstimateCredits(JobTypeAudio, &AudioGenerationParams{AudioType: "voiceover", Prompt: "p"}); got != 10 {
		t.Fatalf("default audio: got %d credits, want 10", got)
	}
	if got := EstimateCredits(JobTypeAudio, &AudioGenerationParams{AudioType: "voiceover", Prompt: "p", DurationSeconds: 10}); got != 4 {
		t.Fatalf("10s audio: got %d credits, want 4", got)
	}
}

func TestEstimateCreditsWorkflowDefault(t *testing.T) {
	if got := EstimateCredits(JobTypeWorkflow, &WorkflowParams{WorkflowType: "storyboard"}); got != 5 {
		t.Fatalf("workflow: got %d credits, want 5", got)
	}
}
