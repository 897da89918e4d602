package domain

// RoutingDecision is the chosen model/provider for one execution
// attempt, with the selector's expectations about it. Produced fresh per
// attempt and never persisted as its own record.
type RoutingDecision struct {
	Model             string  `json:"model"`
	Provider          string  `json:"provider"`
	Endpoint          string  `json:"endpoint"`
	ExpectedLatencyMS int     `json:"expected_latency_ms"`
	ExpectedCostUSD   float64 `json:"expected_cost_usd"`
	QualityScore      float64 `json:"quality_score"`
	Confidence        float64 `json:"confidence"`
}
