package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers"
	"github.com/AI-Template-SDK/trakkr/internal/providers/testutil"
)

func TestFactoryCreatesCorrectTracker(t *testing.T) {
	tests := []struct {
		name        string
		tc          config.TrackerConfig
		shouldError bool
	}{
		{"openai", config.TrackerConfig{Name: "OpenAI", Model: "gpt-4o-mini", APIKey: "k"}, false},
		{"groq", config.TrackerConfig{Name: "Llama (Groq)", Model: "llama-3.1-8b-instant", APIKey: "k", BaseURL: config.GroqBaseURL}, false},
		{"mistral", config.TrackerConfig{Name: "Mistral", Model: "mistral-large-latest", APIKey: "k", BaseURL: config.MistralBaseURL}, false},
		{"claude", config.TrackerConfig{Name: "Claude", Model: "claude-3-5-haiku-latest", APIKey: "k"}, false},
		{"compatible endpoint", config.TrackerConfig{Name: "Local", Model: "qwen2", APIKey: "k", BaseURL: "http://localhost:11434/v1"}, false},
		{"missing key", config.TrackerConfig{Name: "OpenAI", Model: "gpt-4o-mini"}, true},
		{"missing model", config.TrackerConfig{Name: "OpenAI", APIKey: "k"}, true},
		{"unsupported", config.TrackerConfig{Name: "Bard", Model: "palm-2", APIKey: "k"}, true},
	}

	costs := testutil.NewMockCostService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, err := providers.NewTracker(tt.tc, costs)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tc.Name, tracker.Name())
			assert.Equal(t, tt.tc.Model, tracker.Model())
		})
	}
}

func TestNewTrackersKeepsConfiguredOrder(t *testing.T) {
	trackers, err := providers.NewTrackers(testutil.SampleConfig(), testutil.NewMockCostService())
	require.NoError(t, err)
	require.Len(t, trackers, 3)

	var names []string
	for _, tr := range trackers {
		names = append(names, tr.Name())
	}
	assert.Equal(t, []string{"Mistral", "Llama (Groq)", "OpenAI"}, names)
}

func TestNewTrackersMissingKey(t *testing.T) {
	cfg := testutil.SampleConfig()
	cfg.GroqAPIKey = ""
	_, err := providers.NewTrackers(cfg, nil)
	assert.Error(t, err)
}

func TestFallbacksMatchTarget(t *testing.T) {
	identity := testutil.SampleIdentity()
	wantRank := map[string]int{"Mistral": 4, "Llama (Groq)": 5, "OpenAI": 2}

	trackers, err := providers.NewTrackers(testutil.SampleConfig(), nil)
	require.NoError(t, err)

	for _, tr := range trackers {
		res := tr.Fallback("P", identity)
		assert.True(t, res.Fallback, tr.Name())

		got, err := metrics.Aggregate([]models.PromptResult{res}, identity)
		require.NoError(t, err)
		require.NotNil(t, got.AverageRank, tr.Name())
		assert.Equal(t, float64(wantRank[tr.Name()]), *got.AverageRank, tr.Name())
	}
}
