package providers

import (
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/providers/chat"
	"github.com/AI-Template-SDK/trakkr/internal/providers/claude"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

// NewTracker creates the appropriate tracker based on the backend config
func NewTracker(tc config.TrackerConfig, costs common.CostCalculator) (Tracker, error) {
	log := logging.Component("provider_factory")
	if tc.Model == "" {
		return nil, fmt.Errorf("no model configured for %q", tc.Name)
	}
	if tc.APIKey == "" {
		return nil, fmt.Errorf("%s API key is empty in config", tc.Name)
	}

	modelLower := strings.ToLower(tc.Model)

	// Anthropic provider
	if strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") ||
		strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku") {
		log.Info().Str("backend", tc.Name).Str("model", tc.Model).Msg("selected anthropic tracker")
		return claude.New(tc, costs, fallbackFor(tc.Name)), nil
	}

	// Everything else speaks the OpenAI chat completions dialect
	if strings.Contains(modelLower, "gpt") || strings.Contains(modelLower, "llama") ||
		strings.Contains(modelLower, "mistral") || strings.Contains(modelLower, "mixtral") ||
		tc.BaseURL != "" {
		log.Info().Str("backend", tc.Name).Str("model", tc.Model).Msg("selected chat completions tracker")
		return chat.New(tc, costs, fallbackFor(tc.Name)), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", tc.Model)
}

// NewTrackers builds every backend listed in TRACKING_MODELS, in order
func NewTrackers(cfg *config.Config, costs common.CostCalculator) ([]Tracker, error) {
	configs, err := cfg.Trackers()
	if err != nil {
		return nil, err
	}

	trackers := make([]Tracker, 0, len(configs))
	for _, tc := range configs {
		t, err := NewTracker(tc, costs)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s tracker: %w", tc.Name, err)
		}
		trackers = append(trackers, t)
	}
	return trackers, nil
}
