package common

// AIResponse contains the response from an AI provider
// Defined here to avoid import cycles
type AIResponse struct {
	Response     string // raw text returned by the model
	Raw          any    // decoded JSON value of Response
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// CostCalculator prices a single call. services.CostService satisfies it.
type CostCalculator interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int) float64
}
