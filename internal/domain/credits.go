package domain

import "math"

const defaultCredits = 5

// EstimateCredits prices a job from its type and params. It is a pure
// function: the value is computed once at submission and stored on the
// job, never recalculated on retries or re-routing.
func EstimateCredits(jobType JobType, params JobParams) int {
	switch jobType {
	case JobTypeVideo:
		duration := 5.0
		quality := QualityStandard
		switch p := params.(type) {
		case *TextToVideoParams:
			if p.DurationSeconds > 0 {
				duration = p.DurationSeconds
			}
			if p.Quality != "" {
				quality = p.Quality
			}
		case *ImageToVideoParams:
			if p.DurationSeconds > 0 {
				duration = p.DurationSeconds
			}
		}
		return int(math.Ceil(duration * 4 * qualityMultiplier(quality)))
	case JobTypeImage:
		switch QualityFor(params) {
		case QualityDraft:
			return 1
		case QualityHD:
			return 15
		case QualityPremium:
			return 30
		default:
			return 5
		}
	case JobTypeAudio:
		duration := 30.0
		if p, ok := params.(*AudioGenerationParams); ok && p.DurationSeconds > 0 {
			duration = p.DurationSeconds
		}
		return int(math.Ceil(duration / 3))
	}
	return defaultCredits
}

func qualityMultiplier(q QualityTier) float64 {
	switch q {
	case QualityDraft:
		return 0.5
	case QualityHD:
		return 2
	case QualityPremium:
		return 4
	default:
		return 1
	}
}
