package routing

import "github.com/nexusatelier/atelier-backend/internal/domain"

// Rule-based routing used whenever the remote selector is unavailable.
// Pure data so the degraded path stays deterministic.

// draftImageDecision is the zero-cost fast path for draft images; it is
// returned without touching the remote selector at all.
var draftImageDecision = domain.RoutingDecision{
	Model:             "sdxl-turbo",
	Provider:          "local-sandbox",
	Endpoint:          "sandbox://sdxl-turbo",
	ExpectedLatencyMS: 3000,
	ExpectedCostUSD:   0,
	QualityScore:      0.7,
	Confidence:        0.95,
}

func fallbackDecision(jobType domain.JobType, quality domain.QualityTier) domain.RoutingDecision {
	switch jobType {
	case domain.JobTypeVideo:
		if quality == domain.QualityPremium {
			return domain.RoutingDecision{
				Model:             "runway-gen4",
				Provider:          "runway",
				Endpoint:          "https://api.runwayml.com/v1/generate",
				ExpectedLatencyMS: 60000,
				ExpectedCostUSD:   0.20,
				QualityScore:      0.95,
				Confidence:        0.9,
			}
		}
		return domain.RoutingDecision{
			Model:             "luma-dream-machine",
			Provider:          "luma",
			Endpoint:          "https://api.lumalabs.ai/v1/generate",
			ExpectedLatencyMS: 45000,
			ExpectedCostUSD:   0.10,
			QualityScore:      0.85,
			Confidence:        0.85,
		}
	case domain.JobTypeImage:
		if quality == domain.QualityPremium {
			return domain.RoutingDecision{
				Model:             "dall-e-3",
				Provider:          "openai",
				Endpoint:          "https://api.openai.com/v1/images/generations",
				ExpectedLatencyMS: 12000,
				ExpectedCostUSD:   0.08,
				QualityScore:      0.9,
				Confidence:        0.9,
			}
		}
		return domain.RoutingDecision{
			Model:             "dall-e-3",
			Provider:          "openai",
			Endpoint:          "https://api.openai.com/v1/images/generations",
			ExpectedLatencyMS: 10000,
			ExpectedCostUSD:   0.04,
			QualityScore:      0.85,
			Confidence:        0.9,
		}
	}
	// Workflows and anything unrecognized share one conservative default.
	return domain.RoutingDecision{
		Model:             "mage-orchestrator",
		Provider:          "nexus",
		Endpoint:          "https://mageagent.internal/api/orchestrate",
		ExpectedLatencyMS: 20000,
		ExpectedCostUSD:   0.05,
		QualityScore:      0.8,
		Confidence:        0.7,
	}
}

// audioDecision routes audio purely by audio_type; no complexity scoring
// or remote selection is involved.
func audioDecision(audioType string) domain.RoutingDecision {
	switch audioType {
	case "voiceover":
		return domain.RoutingDecision{
			Model:             "elevenlabs-turbo",
			Provider:          "elevenlabs",
			Endpoint:          "https://api.elevenlabs.io/v1/text-to-speech",
			ExpectedLatencyMS: 5000,
			ExpectedCostUSD:   0.30,
			QualityScore:      0.88,
			Confidence:        0.9,
		}
	case "soundtrack":
		return domain.RoutingDecision{
			Model:             "firefly-audio",
			Provider:          "adobe",
			Endpoint:          "https://firefly-api.adobe.io/v2/audio/generate",
			ExpectedLatencyMS: 15000,
			ExpectedCostUSD:   0.15,
			QualityScore:      0.85,
			Confidence:        0.85,
		}
	}
	// sound_effect and unrecognized kinds
	return domain.RoutingDecision{
		Model:             "firefly-sfx",
		Provider:          "adobe",
		Endpoint:          "https://firefly-api.adobe.io/v2/audio/sfx",
		ExpectedLatencyMS: 8000,
		ExpectedCostUSD:   0.10,
		QualityScore:      0.8,
		Confidence:        0.8,
	}
}
