package testutil

import (
	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// SampleConfig returns a test configuration
func SampleConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:     "test-openai-key",
		AnthropicAPIKey:  "test-anthropic-key",
		GroqAPIKey:       "test-groq-key",
		MistralAPIKey:    "test-mistral-key",
		OpenAIModel:      "gpt-4o-mini",
		GroqModel:        "llama-3.1-8b-instant",
		MistralModel:     "mistral-large-latest",
		AnthropicModel:   "claude-3-5-haiku-latest",
		TrackingModels:   []string{"mistral", "groq", "openai"},
		MaxBrandsPerUser: 3,
	}
}

// SampleIdentity returns the brand used across tests
func SampleIdentity() models.BrandIdentity {
	return models.BrandIdentity{
		Name:        "Acme",
		Variants:    []string{"Acme", "Acme Inc", "acme.com"},
		Description: "Acme builds CRM software for small teams.",
	}
}

// SamplePrompts returns test tracking prompts
func SamplePrompts() []string {
	return []string{
		"Top 10 CRM tools for small businesses",
		"Best sales pipeline software in 2025",
		"Leading customer support platforms",
	}
}

// SampleTrackingJSON is a well-formed tracking answer naming Acme at rank 2
func SampleTrackingJSON() string {
	return `{
		"prompt": "Top 10 CRM tools for small businesses",
		"analysis_date": "2024-05-01T00:00:00Z",
		"ranked_brands": [
			{"brand": "Globex", "rank": 1, "mentions": 9, "explanation": "Market leader", "sentiment": "positive"},
			{"brand": "Acme Inc", "rank": 2, "mentions": 7, "explanation": "Popular with small teams", "sentiment": "positive"},
			{"brand": "Initech", "rank": 3, "mentions": 4, "explanation": "Legacy option", "sentiment": "negative"}
		],
		"total_brands_found": 3,
		"target_brand_found": true,
		"target_brand_rank": 2
	}`
}

// SampleBrandAnalysisJSON is a brand analysis answer wrapped the way models often return it
func SampleBrandAnalysisJSON() string {
	return "```json\n" + `{
		"brand_name": "Acme",
		"name_variants": ["Acme", "Acme Inc", "AcmeCRM"],
		"description": "Acme builds CRM software for small teams.",
		"prompts": [
			"Top 10 CRM tools for small businesses",
			"Best sales pipeline software in 2025",
			"Leading customer support platforms",
			"Top affordable CRM platforms",
			"Best CRM integrations for startups",
		]
	}` + "\n```"
}
