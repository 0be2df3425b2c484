// services/cost_service.go
package services

import (
	"fmt"
	"strings"
)

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4o-mini":             {input: 0.15, output: 0.60},
	"gpt-4o":                  {input: 2.50, output: 10.00},
	"gpt-4.1-mini":            {input: 0.40, output: 1.60},
	"llama-3.1-8b-instant":    {input: 0.05, output: 0.08},
	"llama-3.3-70b-versatile": {input: 0.59, output: 0.79},
	"mistral-large-latest":    {input: 2.00, output: 6.00},
	"mistral-small-latest":    {input: 0.20, output: 0.60},
	"claude-3-5-haiku-latest": {input: 0.80, output: 4.00},
	"claude-sonnet-4-0":       {input: 3.00, output: 15.00},
}

// defaultModel prices unknown models
const defaultModel = "gpt-4o-mini"

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	// Calculate token costs
	modelCosts, exists := costPerToken[strings.ToLower(model)]
	if !exists {
		modelCosts = costPerToken[defaultModel]
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}

// GetCostByModel returns the input and output price per 1M tokens
func (s *costService) GetCostByModel(model string) (float64, float64, error) {
	modelCosts, exists := costPerToken[strings.ToLower(model)]
	if !exists {
		return 0, 0, fmt.Errorf("no pricing for model %q", model)
	}
	return modelCosts.input, modelCosts.output, nil
}
