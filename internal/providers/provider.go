package providers

import (
	"context"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

// Tracker asks one language model backend where brands rank for a prompt
type Tracker interface {
	// Name is the display name used in per-model report rows
	Name() string
	Model() string
	// TrackPrompt returns the model's answer with Raw holding the decoded JSON
	TrackPrompt(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error)
	// Fallback is the canned answer substituted when TrackPrompt fails
	Fallback(prompt string, identity models.BrandIdentity) models.PromptResult
}
